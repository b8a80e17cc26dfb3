package gallery

import (
	"time"

	"apod_gallery/internal/models"
)

// MaxItems - сколько записей показывает галерея.
const MaxItems = 9

// Select возвращает не больше MaxItems записей в исходном порядке.
//
// Если одна из границ пустая, возвращается начало ленты без сравнения дат.
// Иначе берутся записи с датой в [start, end] включительно. start > end даёт
// пустой результат. Граница, которая не разбирается как 2006-01-02, делает
// любое сравнение ложным, поэтому результат тоже пустой.
func Select(entries []models.Entry, start, end string) []models.Entry {
	if start == "" || end == "" {
		return head(entries)
	}

	from, fromErr := time.Parse(models.DateLayout, start)
	to, toErr := time.Parse(models.DateLayout, end)

	selected := make([]models.Entry, 0, MaxItems)
	if fromErr != nil || toErr != nil {
		return selected
	}
	for _, e := range entries {
		if len(selected) == MaxItems {
			break
		}
		if e.Date.Before(from) || e.Date.After(to) {
			continue
		}
		selected = append(selected, e)
	}
	return selected
}

func head(entries []models.Entry) []models.Entry {
	n := min(len(entries), MaxItems)
	out := make([]models.Entry, n)
	copy(out, entries[:n])
	return out
}

// ValidBounds сообщает, будут ли границы восприняты как даты.
// Используется только для логирования.
func ValidBounds(start, end string) bool {
	if start == "" || end == "" {
		return true
	}
	_, err1 := time.Parse(models.DateLayout, start)
	_, err2 := time.Parse(models.DateLayout, end)
	return err1 == nil && err2 == nil
}
