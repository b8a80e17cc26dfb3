package gallery

import (
	"sync"

	"apod_gallery/internal/models"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// VideoPermissions - набор разрешений встроенного фрейма видео.
const VideoPermissions = "accelerometer; autoplay; clipboard-write; encrypted-media; gyroscope; picture-in-picture"

// ErrOverlayNotFound возвращается при клике по уже закрытому или неизвестному окну.
var ErrOverlayNotFound = errors.New("overlay not found")

// Target - куда пришёлся клик в модальном окне.
type Target string

const (
	TargetClose      Target = "close"
	TargetBackground Target = "background"
	TargetContent    Target = "content"
)

// Modal описывает одно модальное окно с подробностями записи.
// Для изображения заполнен ImageURL, для видео - EmbedURL и Allow.
type Modal struct {
	ID          string `json:"id"`
	Key         string `json:"key"`
	Title       string `json:"title"`
	Date        string `json:"date"`
	Explanation string `json:"explanation"`
	Copyright   string `json:"copyright,omitempty"`

	ImageURL        string `json:"image_url,omitempty"`
	EmbedURL        string `json:"embed_url,omitempty"`
	Allow           string `json:"allow,omitempty"`
	AllowFullscreen bool   `json:"allow_fullscreen,omitempty"`
}

// NewModal строит окно для записи. URL видео не проверяется.
func NewModal(e models.Entry) Modal {
	m := Modal{
		ID:          uuid.NewString(),
		Key:         e.Key(),
		Title:       e.Title,
		Date:        e.LongDate(),
		Explanation: e.Explanation,
		Copyright:   e.Copyright,
	}

	switch media := e.Media.(type) {
	case models.Image:
		m.ImageURL = media.BestURL()
	case models.Video:
		m.EmbedURL = media.URL
		m.Allow = VideoPermissions
		m.AllowFullscreen = true
	}
	return m
}

// Dismisses сообщает, закрывает ли клик по target окно.
func (t Target) Dismisses() bool {
	return t == TargetClose || t == TargetBackground
}

// Document - слой модальных окон страницы. Каждый Open добавляет новое окно,
// ограничения на число одновременно открытых окон нет.
type Document struct {
	mu       sync.Mutex
	overlays []Modal
}

// Open добавляет новое окно поверх уже открытых.
func (d *Document) Open(e models.Entry) Modal {
	m := NewModal(e)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.overlays = append(d.overlays, m)
	return m
}

// Click обрабатывает клик по окну id. Возвращает true, если окно закрыто.
func (d *Document) Click(id string, target Target) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, m := range d.overlays {
		if m.ID != id {
			continue
		}
		if !target.Dismisses() {
			return false, nil
		}
		d.overlays = append(d.overlays[:i], d.overlays[i+1:]...)
		return true, nil
	}
	return false, errors.Wrapf(ErrOverlayNotFound, "overlay %s", id)
}

// Overlays возвращает открытые окна в порядке открытия.
func (d *Document) Overlays() []Modal {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Modal(nil), d.overlays...)
}
