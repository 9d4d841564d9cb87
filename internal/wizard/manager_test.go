package wizard

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/boardcfg/internal/models"
)

func TestManager(t *testing.T) {
	m := NewManager(&fakeBackend{meta: sampleMetadata()})

	s, err := m.Start(context.Background())
	require.NoError(t, err)
	assert.Len(t, s.ID(), 26)

	got, err := m.Get(s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)

	_, err = m.Get("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// Finished sessions are dropped when the next one starts.
	require.NoError(t, s.Cancel())
	s2, err := m.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, m.Len())
	_, err = m.Get(s.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)

	m.Remove(s2.ID())
	assert.Zero(t, m.Len())
}

func TestManager_KeepsFailedFetch(t *testing.T) {
	m := NewManager(&fakeBackend{fetchErr: errBoom})

	s, err := m.Start(context.Background())
	assert.ErrorIs(t, err, errBoom)
	require.NotNil(t, s)

	got, err := m.Get(s.ID())
	require.NoError(t, err)
	assert.Equal(t, StepFetch, got.Step())
}

// gatedBackend blocks every Fetch until release is closed.
type gatedBackend struct {
	entered chan struct{}
	release chan struct{}
}

func (g *gatedBackend) Fetch(ctx context.Context) (models.TrackerMetadata, error) {
	g.entered <- struct{}{}
	select {
	case <-g.release:
		return sampleMetadata(), nil
	case <-ctx.Done():
		return models.TrackerMetadata{}, ctx.Err()
	}
}

func (g *gatedBackend) Commit(_ context.Context, cfg models.Configuration) (models.Configuration, error) {
	return cfg, nil
}

func (g *gatedBackend) Validate(_ context.Context) models.ValidationResult {
	return models.ValidationResult{Valid: true, Errors: []string{}, Warnings: []string{}}
}

func TestManager_InFlightFetchDoesNotBlockOthers(t *testing.T) {
	g := &gatedBackend{entered: make(chan struct{}, 2), release: make(chan struct{})}
	m := NewManager(g)

	ready := startedSession(t, &fakeBackend{meta: sampleMetadata()})
	m.mu.Lock()
	m.sessions[ready.ID()] = ready
	m.mu.Unlock()

	var wg sync.WaitGroup
	startOne := func() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.Start(context.Background())
		}()
	}
	t.Cleanup(func() {
		close(g.release)
		wg.Wait()
	})

	waitEntered := func(what string) {
		t.Helper()
		select {
		case <-g.entered:
		case <-time.After(2 * time.Second):
			t.Fatalf("%s: fetch never started", what)
		}
	}

	startOne()
	waitEntered("first start")

	// A second start prunes while the first session still holds its lock.
	startOne()
	waitEntered("second start")

	got := make(chan error, 1)
	go func() {
		_, err := m.Get(ready.ID())
		got <- err
	}()
	select {
	case err := <-got:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Get blocked while another session was fetching")
	}
	assert.Equal(t, 3, m.Len())
}

func TestManager_PrunesIdleSessions(t *testing.T) {
	m := NewManager(&fakeBackend{meta: sampleMetadata()})
	m.idleTTL = time.Minute

	idle, err := m.Start(context.Background())
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	fresh, err := m.Start(context.Background())
	require.NoError(t, err)

	_, err = m.Get(idle.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = m.Get(fresh.ID())
	assert.NoError(t, err)
	assert.Equal(t, 1, m.Len())
}

func TestManager_KeepsActiveSessions(t *testing.T) {
	m := NewManager(&fakeBackend{meta: sampleMetadata()})
	m.idleTTL = time.Minute

	s, err := m.Start(context.Background())
	require.NoError(t, err)
	_, err = m.Start(context.Background())
	require.NoError(t, err)

	_, err = m.Get(s.ID())
	assert.NoError(t, err)
	assert.Equal(t, 2, m.Len())
}
