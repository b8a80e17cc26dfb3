package session

import (
	"context"
	"math/rand"
	"sync"

	"apod_gallery/internal/facts"
	"apod_gallery/internal/gallery"
	"apod_gallery/internal/logger"
	"apod_gallery/internal/models"

	"github.com/pkg/errors"
)

// ErrEntryNotFound - в загруженной ленте нет записи с такой датой.
var ErrEntryNotFound = errors.New("entry not found")

// FeedFetcher загружает ленту целиком.
type FeedFetcher interface {
	Fetch(ctx context.Context) ([]models.Entry, error)
}

// Snapshot - то, что нужно слою представления для одной страницы.
type Snapshot struct {
	Fact     string
	Start    string
	End      string
	Gallery  gallery.View
	Overlays []gallery.Modal
}

// Controller владеет состоянием сессии: лентой, видом галереи и модальными окнами.
// Лента заменяется целиком при каждой успешной загрузке.
type Controller struct {
	fetcher FeedFetcher
	fact    string
	doc     gallery.Document
	wg      sync.WaitGroup

	mu         sync.Mutex
	entries    []models.Entry
	view       gallery.View
	start, end string
	generation uint64
	cancel     context.CancelFunc
}

// New создаёт контроллер и один раз выбирает факт для показа.
func New(fetcher FeedFetcher, r *rand.Rand) *Controller {
	return &Controller{
		fetcher: fetcher,
		fact:    facts.Random(r),
		view:    gallery.Placeholder(),
	}
}

// Fetch загружает ленту и перестраивает галерею по границам start и end.
//
// Пока запрос идёт, галерея в состоянии loading. Если за это время начался
// более новый Fetch или Start, старый запрос отменяется, а его результат
// отбрасывается. При ошибке лента сессии не меняется, галерея показывает
// сообщение об ошибке.
func (c *Controller) Fetch(ctx context.Context, start, end string) (gallery.View, error) {
	ctx, cancel, gen := c.begin(ctx, start, end)
	defer cancel()

	entries, err := c.fetcher.Fetch(ctx)
	return c.finish(gen, start, end, entries, err)
}

// Start переводит галерею в loading и загружает ленту в фоне.
// Возвращается сразу, результат виден через Snapshot.
func (c *Controller) Start(ctx context.Context, start, end string) {
	ctx, cancel, gen := c.begin(ctx, start, end)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()

		entries, err := c.fetcher.Fetch(ctx)
		if _, err := c.finish(gen, start, end, entries, err); err != nil {
			logger.Log.WithError(err).Warn("Gallery shows fetch error")
		}
	}()
}

// Wait ждёт завершения фоновых загрузок.
func (c *Controller) Wait() {
	c.wg.Wait()
}

func (c *Controller) begin(ctx context.Context, start, end string) (context.Context, context.CancelFunc, uint64) {
	ctx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.generation++
	gen := c.generation
	c.cancel = cancel
	c.start, c.end = start, end
	c.view = gallery.Loading()
	c.mu.Unlock()

	if !gallery.ValidBounds(start, end) {
		c.log(gen, start, end).Debug("Date bounds do not parse, filter will match nothing")
	}
	return ctx, cancel, gen
}

func (c *Controller) finish(gen uint64, start, end string, entries []models.Entry, err error) (gallery.View, error) {
	log := c.log(gen, start, end)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		log.Info("Discarding stale feed response")
		return c.view, nil
	}
	c.cancel = nil

	if err != nil {
		c.view = gallery.Failed()
		return c.view, err
	}

	c.entries = entries
	c.view = gallery.Render(gallery.Select(entries, start, end))
	log.WithField("items", len(c.view.Items)).Debug("Gallery rendered")
	return c.view, nil
}

func (c *Controller) log(gen uint64, start, end string) *logger.Entry {
	return logger.Log.WithFields(logger.Fields{
		"generation": gen,
		"start":      start,
		"end":        end,
	})
}

// Open открывает модальное окно для записи с датой key из текущей ленты.
func (c *Controller) Open(key string) (gallery.Modal, error) {
	c.mu.Lock()
	entry, ok := find(c.entries, key)
	c.mu.Unlock()

	if !ok {
		return gallery.Modal{}, errors.Wrapf(ErrEntryNotFound, "date %s", key)
	}
	return c.doc.Open(entry), nil
}

// Click передаёт клик по модальному окну в документ.
func (c *Controller) Click(id string, target gallery.Target) (bool, error) {
	return c.doc.Click(id, target)
}

// Entries возвращает копию текущей ленты.
func (c *Controller) Entries() []models.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Entry(nil), c.entries...)
}

// Snapshot собирает состояние страницы.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Fact:     c.fact,
		Start:    c.start,
		End:      c.end,
		Gallery:  c.view,
		Overlays: c.doc.Overlays(),
	}
}

func find(entries []models.Entry, key string) (models.Entry, bool) {
	for _, e := range entries {
		if e.Key() == key {
			return e, true
		}
	}
	return models.Entry{}, false
}
