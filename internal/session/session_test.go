package session_test

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"apod_gallery/internal/facts"
	"apod_gallery/internal/fetcher"
	"apod_gallery/internal/gallery"
	"apod_gallery/internal/logger"
	"apod_gallery/internal/models"
	"apod_gallery/internal/session"

	"github.com/stretchr/testify/require"
)

func init() {
	logger.Silence()
}

type stubFetcher struct {
	mu    sync.Mutex
	calls []func(ctx context.Context) ([]models.Entry, error)
}

func (s *stubFetcher) push(fn func(ctx context.Context) ([]models.Entry, error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, fn)
}

func (s *stubFetcher) Fetch(ctx context.Context) ([]models.Entry, error) {
	s.mu.Lock()
	fn := s.calls[0]
	s.calls = s.calls[1:]
	s.mu.Unlock()
	return fn(ctx)
}

func returns(entries []models.Entry, err error) func(context.Context) ([]models.Entry, error) {
	return func(context.Context) ([]models.Entry, error) { return entries, err }
}

func feed(t *testing.T, n int) []models.Entry {
	t.Helper()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := make([]models.Entry, 0, n)
	for i := 0; i < n; i++ {
		e, err := models.NewEntry(models.RawEntry{
			Date:      start.AddDate(0, 0, i).Format(models.DateLayout),
			Title:     fmt.Sprintf("Entry %d", i),
			MediaType: models.MediaImage,
			URL:       fmt.Sprintf("https://apod.test/%d.jpg", i),
		})
		require.NoError(t, err)
		entries = append(entries, e)
	}
	return entries
}

func TestNew_ShowsFactAndPlaceholder(t *testing.T) {
	c := session.New(&stubFetcher{}, rand.New(rand.NewSource(7)))
	snap := c.Snapshot()

	require.Contains(t, facts.All(), snap.Fact)
	require.Equal(t, gallery.StatePlaceholder, snap.Gallery.State)
	require.Empty(t, snap.Overlays)
}

func TestFetch_SuccessStoresFeedAndRenders(t *testing.T) {
	stub := &stubFetcher{}
	stub.push(returns(feed(t, 12), nil))
	c := session.New(stub, nil)

	view, err := c.Fetch(context.Background(), "2024-01-03", "2024-01-05")
	require.NoError(t, err)
	require.Equal(t, gallery.StateItems, view.State)
	require.Len(t, view.Items, 3)
	require.Equal(t, "2024-01-03", view.Items[0].Key)
	require.Len(t, c.Entries(), 12)

	snap := c.Snapshot()
	require.Equal(t, "2024-01-03", snap.Start)
	require.Equal(t, "2024-01-05", snap.End)
	require.Equal(t, view, snap.Gallery)
}

func TestFetch_EmptyRange(t *testing.T) {
	stub := &stubFetcher{}
	stub.push(returns(feed(t, 3), nil))
	c := session.New(stub, nil)

	view, err := c.Fetch(context.Background(), "2024-01-05", "2024-01-01")
	require.NoError(t, err)
	require.Equal(t, gallery.StateEmpty, view.State)
	require.Equal(t, gallery.EmptyMessage, view.Message)
}

func TestFetch_ErrorKeepsPreviousFeed(t *testing.T) {
	stub := &stubFetcher{}
	stub.push(returns(feed(t, 4), nil))
	stub.push(returns(nil, &fetcher.FetchError{Kind: fetcher.KindStatus, Err: fmt.Errorf("unexpected status 404")}))
	c := session.New(stub, nil)

	_, err := c.Fetch(context.Background(), "", "")
	require.NoError(t, err)
	before := c.Entries()

	view, err := c.Fetch(context.Background(), "", "")
	require.Error(t, err)
	require.Equal(t, gallery.StateError, view.State)
	require.Equal(t, gallery.ErrorMessage, view.Message)
	require.Equal(t, before, c.Entries())
}

func TestFetch_ShowsLoadingWhileInFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	stub := &stubFetcher{}
	stub.push(func(context.Context) ([]models.Entry, error) {
		close(started)
		<-release
		return nil, nil
	})
	c := session.New(stub, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Fetch(context.Background(), "", "")
	}()

	<-started
	require.Equal(t, gallery.StateLoading, c.Snapshot().Gallery.State)
	close(release)
	<-done
	require.Equal(t, gallery.StateEmpty, c.Snapshot().Gallery.State)
}

func TestFetch_StaleResponseIsDiscarded(t *testing.T) {
	started := make(chan struct{})
	stale := feed(t, 1)
	stub := &stubFetcher{}
	stub.push(func(ctx context.Context) ([]models.Entry, error) {
		close(started)
		<-ctx.Done()
		return stale, nil
	})
	stub.push(returns(feed(t, 5), nil))
	c := session.New(stub, nil)

	var (
		staleErr error
		wg       sync.WaitGroup
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, staleErr = c.Fetch(context.Background(), "", "")
	}()

	<-started
	view, err := c.Fetch(context.Background(), "", "")
	require.NoError(t, err)
	wg.Wait()

	require.NoError(t, staleErr)
	require.Len(t, view.Items, 5)
	require.Len(t, c.Entries(), 5)
	require.Len(t, c.Snapshot().Gallery.Items, 5)
}

func TestStart_LoadsInBackground(t *testing.T) {
	release := make(chan struct{})
	entries := feed(t, 6)
	stub := &stubFetcher{}
	stub.push(func(context.Context) ([]models.Entry, error) {
		<-release
		return entries, nil
	})
	c := session.New(stub, nil)

	c.Start(context.Background(), "2024-01-02", "2024-01-03")
	snap := c.Snapshot()
	require.Equal(t, gallery.StateLoading, snap.Gallery.State)
	require.Equal(t, "2024-01-02", snap.Start)
	require.Empty(t, c.Entries())

	close(release)
	c.Wait()

	snap = c.Snapshot()
	require.Equal(t, gallery.StateItems, snap.Gallery.State)
	require.Len(t, snap.Gallery.Items, 2)
	require.Len(t, c.Entries(), 6)
}

func TestStart_ErrorShowsMessage(t *testing.T) {
	stub := &stubFetcher{}
	stub.push(returns(nil, &fetcher.FetchError{Kind: fetcher.KindDecode, Err: fmt.Errorf("feed is not a JSON array")}))
	c := session.New(stub, nil)

	c.Start(context.Background(), "", "")
	c.Wait()

	require.Equal(t, gallery.Failed(), c.Snapshot().Gallery)
	require.Empty(t, c.Entries())
}

func TestStart_NewerStartCancelsOlder(t *testing.T) {
	started := make(chan struct{})
	cancelled := make(chan struct{})
	stale := feed(t, 1)
	stub := &stubFetcher{}
	stub.push(func(ctx context.Context) ([]models.Entry, error) {
		close(started)
		<-ctx.Done()
		close(cancelled)
		return stale, nil
	})
	stub.push(returns(feed(t, 5), nil))
	c := session.New(stub, nil)

	c.Start(context.Background(), "", "")
	<-started
	c.Start(context.Background(), "", "")
	c.Wait()

	<-cancelled
	require.Len(t, c.Entries(), 5)
	require.Len(t, c.Snapshot().Gallery.Items, 5)
}

func TestOpenAndClick(t *testing.T) {
	stub := &stubFetcher{}
	stub.push(returns(feed(t, 3), nil))
	c := session.New(stub, nil)

	_, err := c.Open("2024-01-02")
	require.ErrorIs(t, err, session.ErrEntryNotFound)

	_, err = c.Fetch(context.Background(), "", "")
	require.NoError(t, err)

	m, err := c.Open("2024-01-02")
	require.NoError(t, err)
	require.Equal(t, "Entry 1", m.Title)
	require.Len(t, c.Snapshot().Overlays, 1)

	dismissed, err := c.Click(m.ID, gallery.TargetContent)
	require.NoError(t, err)
	require.False(t, dismissed)
	require.Len(t, c.Snapshot().Overlays, 1)

	dismissed, err = c.Click(m.ID, gallery.TargetBackground)
	require.NoError(t, err)
	require.True(t, dismissed)
	require.Empty(t, c.Snapshot().Overlays)
}
