package storefront

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"

	"finitefield.org/elarion-web/internal/catalog"
	"finitefield.org/elarion-web/internal/intro/introtest"
)

type fakeNow struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeNow) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeNow) Add(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

func TestRegistryOpenIssuesULIDs(t *testing.T) {
	r := NewRegistry(catalog.Default(), Options{Clock: &introtest.Clock{}})
	defer r.Close()

	s, created, err := r.Open("")
	require.NoError(t, err)
	require.True(t, created)
	_, err = ulid.ParseStrict(s.ID())
	require.NoError(t, err)

	again, created, err := r.Open(s.ID())
	require.NoError(t, err)
	require.False(t, created)
	require.Same(t, s, again)

	got, ok := r.Get(s.ID())
	require.True(t, ok)
	require.Same(t, s, got)
	require.Equal(t, 1, r.Len())
}

func TestRegistrySessionsAreIsolated(t *testing.T) {
	r := NewRegistry(catalog.Default(), Options{Clock: &introtest.Clock{}})
	defer r.Close()

	a, _, err := r.Open("a")
	require.NoError(t, err)
	b, _, err := r.Open("b")
	require.NoError(t, err)

	_, err = a.Dispatch(context.Background(), AddToCart{ProductID: 1})
	require.NoError(t, err)
	require.Equal(t, 1, a.Snapshot().ItemCount)
	require.Zero(t, b.Snapshot().ItemCount)
}

func TestRegistrySweepClosesIdleSessions(t *testing.T) {
	now := &fakeNow{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	n := 0
	r := NewRegistry(catalog.Default(),
		Options{Clock: &introtest.Clock{}, Now: now.Now},
		WithIdleTTL(10*time.Minute),
		WithIDGenerator(func() string { n++; return fmt.Sprintf("s%d", n) }),
	)
	defer r.Close()

	idle, _, err := r.Open("")
	require.NoError(t, err)
	now.Add(6 * time.Minute)
	busy, _, err := r.Open("")
	require.NoError(t, err)
	require.Equal(t, "s2", busy.ID())

	now.Add(5 * time.Minute)
	_, err = busy.Dispatch(context.Background(), SetQuery{Query: "noir"})
	require.NoError(t, err)

	require.Equal(t, 1, r.Sweep())
	_, ok := r.Get(idle.ID())
	require.False(t, ok)
	<-idle.Done()
	_, ok = r.Get(busy.ID())
	require.True(t, ok)
	require.Zero(t, r.Sweep())
}

func TestRegistryEvictsLeastRecentlyActive(t *testing.T) {
	now := &fakeNow{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	r := NewRegistry(catalog.Default(),
		Options{Clock: &introtest.Clock{}, Now: now.Now},
		WithMaxSessions(2),
	)
	defer r.Close()

	a, _, err := r.Open("a")
	require.NoError(t, err)
	now.Add(time.Minute)
	b, _, err := r.Open("b")
	require.NoError(t, err)
	now.Add(time.Minute)
	_, err = a.Dispatch(context.Background(), AddToCart{ProductID: 1})
	require.NoError(t, err)

	now.Add(time.Second)
	_, created, err := r.Open("")
	require.NoError(t, err)
	require.True(t, created)
	<-b.Done()
	_, ok := r.Get("b")
	require.False(t, ok)
	_, ok = r.Get("a")
	require.True(t, ok, "the visitor who acted most recently stays")

	for i := 0; i < 5; i++ {
		now.Add(time.Second)
		_, _, err := r.Open("")
		require.NoError(t, err)
	}
	<-a.Done()
	require.Equal(t, 2, r.Len())
}

func TestRegistryRemove(t *testing.T) {
	r := NewRegistry(catalog.Default(), Options{Clock: &introtest.Clock{}})
	defer r.Close()

	s, _, err := r.Open("x")
	require.NoError(t, err)
	require.True(t, r.Remove("x"))
	require.False(t, r.Remove("x"))
	<-s.Done()
}

func TestRegistryRunClosesOnCancel(t *testing.T) {
	r := NewRegistry(catalog.Default(), Options{Clock: &introtest.Clock{}})
	s, _, err := r.Open("")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- r.Run(ctx, time.Millisecond) }()
	cancel()
	require.NoError(t, <-errc)

	<-s.Done()
	_, _, err = r.Open("")
	require.ErrorIs(t, err, ErrRegistryClosed)
	require.Zero(t, r.Len())
}
