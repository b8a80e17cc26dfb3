package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"apod_gallery/internal/logger"
	"apod_gallery/internal/metrics"
	"apod_gallery/internal/models"

	"github.com/pkg/errors"
)

// Виды ошибок загрузки. Пользователь видит одно и то же сообщение для всех.
const (
	KindRequest = "request"
	KindStatus  = "status"
	KindDecode  = "decode"
)

// OutcomeCanceled - запрос отменён через контекст, например более новой загрузкой.
const OutcomeCanceled = "canceled"

// FetchError - единственная ошибка загрузки ленты.
type FetchError struct {
	Kind string
	URL  string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s (%s): %v", e.URL, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher загружает JSON-ленту APOD по фиксированному URL.
type Fetcher struct {
	url     string
	client  *http.Client
	metrics *metrics.Metrics
}

// New создаёт Fetcher. Нулевой timeout означает, что запрос не ограничен по времени.
func New(url string, timeout time.Duration, m *metrics.Metrics) *Fetcher {
	return &Fetcher{
		url:     url,
		client:  &http.Client{Timeout: timeout},
		metrics: m,
	}
}

// Fetch выполняет один GET и возвращает проверенные записи в порядке ленты.
// Записи, не прошедшие models.NewEntry, пропускаются с предупреждением.
func (f *Fetcher) Fetch(ctx context.Context) ([]models.Entry, error) {
	start := time.Now()
	log := logger.Log.WithField("url", f.url)

	entries, skipped, err := f.fetch(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			f.metrics.ObserveFetch(OutcomeCanceled, time.Since(start))
			log.Info("APOD feed fetch canceled")
			return nil, err
		}

		var fe *FetchError
		outcome := KindRequest
		if errors.As(err, &fe) {
			outcome = fe.Kind
		}
		f.metrics.ObserveFetch(outcome, time.Since(start))
		log.WithError(err).Error("Failed to fetch APOD feed")
		return nil, err
	}

	f.metrics.ObserveFetch("ok", time.Since(start))
	f.metrics.AddSkipped(skipped)
	log.WithFields(logger.Fields{
		"entries": len(entries),
		"skipped": skipped,
	}).Info("Fetched APOD feed")
	return entries, nil
}

func (f *Fetcher) fetch(ctx context.Context) ([]models.Entry, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, 0, f.fail(KindRequest, errors.Wrap(err, "build request"))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, f.fail(KindRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, 0, f.fail(KindStatus, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	dec := json.NewDecoder(resp.Body)
	var raw []models.RawEntry
	if err := dec.Decode(&raw); err != nil {
		return nil, 0, f.fail(KindDecode, errors.Wrap(err, "decode feed"))
	}
	// null декодируется в nil-срез без ошибки, а [] - в пустой.
	if raw == nil {
		return nil, 0, f.fail(KindDecode, errors.New("feed is not a JSON array"))
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); err != io.EOF {
		return nil, 0, f.fail(KindDecode, errors.New("unexpected data after feed array"))
	}

	entries := make([]models.Entry, 0, len(raw))
	skipped := 0
	for _, r := range raw {
		entry, err := models.NewEntry(r)
		if err != nil {
			logger.Log.WithField("url", f.url).Warnf("Skipping feed entry: %v", err)
			skipped++
			continue
		}
		entries = append(entries, entry)
	}
	return entries, skipped, nil
}

func (f *Fetcher) fail(kind string, err error) error {
	return &FetchError{Kind: kind, URL: f.url, Err: err}
}
