package gallery

import "apod_gallery/internal/models"

// State - что сейчас показывает область галереи.
type State string

const (
	StatePlaceholder State = "placeholder"
	StateLoading     State = "loading"
	StateError       State = "error"
	StateEmpty       State = "empty"
	StateItems       State = "items"
)

const (
	PlaceholderMessage = "Select a date range and click the button to discover amazing space images!"
	LoadingMessage     = "Loading amazing space images..."
	ErrorMessage       = "Failed to load space images. Please try again."
	EmptyMessage       = "No images found for this date range. Try different dates!"

	// VideoFallbackThumbnail показывается для видео без thumbnail_url.
	VideoFallbackThumbnail = "https://img.youtube.com/vi/default.jpg"
)

// Item - одна карточка галереи.
type Item struct {
	Key       string `json:"key"`
	Title     string `json:"title"`
	Date      string `json:"date"`
	Thumbnail string `json:"thumbnail"`
	Video     bool   `json:"video"`
}

// View - полное описание области галереи. Message заполнен для всех
// состояний, кроме StateItems; Items - только для StateItems.
type View struct {
	State   State  `json:"state"`
	Message string `json:"message,omitempty"`
	Items   []Item `json:"items,omitempty"`
}

func Placeholder() View { return View{State: StatePlaceholder, Message: PlaceholderMessage} }
func Loading() View     { return View{State: StateLoading, Message: LoadingMessage} }
func Failed() View      { return View{State: StateError, Message: ErrorMessage} }

// Render строит карточки в полученном порядке. Пустой вход даёт одно
// сообщение и ни одной карточки.
func Render(entries []models.Entry) View {
	if len(entries) == 0 {
		return View{State: StateEmpty, Message: EmptyMessage}
	}

	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		items = append(items, newItem(e))
	}
	return View{State: StateItems, Items: items}
}

func newItem(e models.Entry) Item {
	item := Item{
		Key:   e.Key(),
		Title: e.Title,
		Date:  e.LongDate(),
	}

	switch m := e.Media.(type) {
	case models.Image:
		item.Thumbnail = m.URL
	case models.Video:
		item.Video = true
		item.Thumbnail = m.ThumbnailURL
		if item.Thumbnail == "" {
			item.Thumbnail = VideoFallbackThumbnail
		}
	}
	return item
}
