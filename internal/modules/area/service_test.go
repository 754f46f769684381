package area

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"

	"crowdradar/internal/config"
)

type fakeFeed struct {
	results []FeedResult
	calls   int
}

func (f *fakeFeed) Fetch(ctx context.Context, area string) FeedResult {
	r := f.results[f.calls%len(f.results)]
	f.calls++
	return r
}

type memCache struct {
	items  map[string]Status
	getErr error
	putErr error
}

func newMemCache() *memCache { return &memCache{items: map[string]Status{}} }

func (c *memCache) Get(ctx context.Context, area string) (Status, bool, error) {
	if c.getErr != nil {
		return Status{}, false, c.getErr
	}
	st, ok := c.items[area]
	return st, ok, nil
}

func (c *memCache) Put(ctx context.Context, st Status) error {
	if c.putErr != nil {
		return c.putErr
	}
	c.items[st.Area] = st
	return nil
}

func newTestService(feed Feed, cache Cache) *Service {
	log, _ := test.NewNullLogger()
	svc := NewService(feed, cache, config.AreaConfig{Name: "강남역", PollInterval: time.Millisecond}, log)
	svc.now = func() time.Time { return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestService_CurrentPollsOnMiss(t *testing.T) {
	feed := &fakeFeed{results: []FeedResult{{Success: true, Population: 75000}}}
	cache := newMemCache()
	svc := newTestService(feed, cache)

	st := svc.Current(context.Background())
	if st.Label != LabelBusy || st.Area != "강남역" {
		t.Fatalf("unexpected status: %+v", st)
	}
	if _, ok := cache.items["강남역"]; !ok {
		t.Fatal("status was not cached")
	}

	svc.Current(context.Background())
	if feed.calls != 1 {
		t.Errorf("expected cached read, feed called %d times", feed.calls)
	}
}

func TestService_CacheFailuresDegradeToPoll(t *testing.T) {
	feed := &fakeFeed{results: []FeedResult{FallbackResult()}}
	cache := newMemCache()
	cache.getErr = errors.New("redis down")
	cache.putErr = errors.New("redis down")
	svc := newTestService(feed, cache)

	st := svc.Current(context.Background())
	if st.Success || st.Label != LabelNormal || st.Population != FallbackPopulation {
		t.Errorf("unexpected status: %+v", st)
	}
}

func TestService_CacheDownServesLastReading(t *testing.T) {
	feed := &fakeFeed{results: []FeedResult{{Success: true, Population: 95000}}}
	cache := newMemCache()
	cache.getErr = errors.New("redis down")
	cache.putErr = errors.New("redis down")
	svc := newTestService(feed, cache)

	first := svc.Refresh(context.Background())
	for i := 0; i < 3; i++ {
		st := svc.Current(context.Background())
		if st.Label != LabelVeryBusy || !st.ObservedAt.Equal(first.ObservedAt) {
			t.Fatalf("unexpected status: %+v", st)
		}
	}
	if feed.calls != 1 {
		t.Errorf("feed polled %d times while the cache was down, want 1", feed.calls)
	}
}

func TestService_RunPoller(t *testing.T) {
	feed := &fakeFeed{results: []FeedResult{
		{Success: true, Population: 20000},
		{Success: true, Population: 95000},
	}}
	svc := newTestService(feed, newMemCache())

	ctx, cancel := context.WithCancel(context.Background())
	var got []Label
	done := make(chan struct{})
	go func() {
		svc.RunPoller(ctx, func(st Status) {
			got = append(got, st.Label)
			if len(got) == 2 {
				cancel()
			}
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop")
	}
	if len(got) != 2 || got[0] != LabelQuiet || got[1] != LabelVeryBusy {
		t.Errorf("unexpected updates: %v", got)
	}
}
