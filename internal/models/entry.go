package models

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// DateLayout формат поля date в ленте APOD.
const DateLayout = "2006-01-02"

// MediaType тип медиа записи.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// RawEntry представляет одну запись JSON-ленты в том виде, в каком её отдаёт сервер.
type RawEntry struct {
	Date         string    `json:"date"`
	Title        string    `json:"title"`
	Explanation  string    `json:"explanation"`
	MediaType    MediaType `json:"media_type"`
	URL          string    `json:"url"`
	HDURL        string    `json:"hdurl,omitempty"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	Copyright    string    `json:"copyright,omitempty"`
}

// Media - закрытая сумма из двух вариантов: Image и Video.
type Media interface {
	Type() MediaType
	isMedia()
}

// Image - картинка дня. HDURL может быть пустым.
type Image struct {
	URL   string
	HDURL string
}

func (Image) Type() MediaType { return MediaImage }
func (Image) isMedia()        {}

// BestURL возвращает HDURL, если он есть, иначе URL.
func (i Image) BestURL() string {
	if i.HDURL != "" {
		return i.HDURL
	}
	return i.URL
}

// Video - видео дня. ThumbnailURL может быть пустым.
type Video struct {
	URL          string
	ThumbnailURL string
}

func (Video) Type() MediaType { return MediaVideo }
func (Video) isMedia()        {}

// Entry - проверенная запись ленты.
type Entry struct {
	Date        time.Time
	Title       string
	Explanation string
	Copyright   string
	Media       Media
}

// Key возвращает дату записи в формате ленты, она уникальна в пределах ленты.
func (e Entry) Key() string {
	return e.Date.Format(DateLayout)
}

// LongDate форматирует дату как "January 5, 2024".
func (e Entry) LongDate() string {
	return e.Date.Format("January 2, 2006")
}

// NewEntry проверяет запись ленты: дата должна разбираться, url быть непустым,
// а media_type - одним из двух известных.
func NewEntry(raw RawEntry) (Entry, error) {
	date, err := time.Parse(DateLayout, raw.Date)
	if err != nil {
		return Entry{}, errors.Wrapf(err, "entry date %q", raw.Date)
	}
	if raw.URL == "" {
		return Entry{}, fmt.Errorf("entry %s: url is empty", raw.Date)
	}

	entry := Entry{
		Date:        date,
		Title:       raw.Title,
		Explanation: raw.Explanation,
		Copyright:   raw.Copyright,
	}

	switch raw.MediaType {
	case MediaImage:
		entry.Media = Image{URL: raw.URL, HDURL: raw.HDURL}
	case MediaVideo:
		entry.Media = Video{URL: raw.URL, ThumbnailURL: raw.ThumbnailURL}
	default:
		return Entry{}, fmt.Errorf("entry %s: unknown media type %q", raw.Date, raw.MediaType)
	}
	return entry, nil
}
