package credential

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func TestMemoryStoreLifecycle(t *testing.T) {
	s := NewMemory()
	assert.False(t, s.IsActive())
	_, ok := s.Get()
	assert.False(t, ok)

	require.NoError(t, s.Set("tok", time.Hour))
	assert.True(t, s.IsActive())
	tok, ok := s.Get()
	assert.True(t, ok)
	assert.Equal(t, "tok", tok)

	require.NoError(t, s.Clear())
	assert.False(t, s.IsActive())
	assert.True(t, s.ExpiresAt().IsZero())
}

func TestStoreExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := NewMemory()
	s.now = clock.now

	require.NoError(t, s.Set("tok", DefaultTTL))
	assert.Equal(t, clock.now().Add(DefaultTTL), s.ExpiresAt())

	clock.advance(DefaultTTL - time.Second)
	assert.True(t, s.IsActive())

	clock.advance(time.Second)
	assert.False(t, s.IsActive(), "token must expire exactly at its deadline")
	_, ok := s.Get()
	assert.False(t, ok)
}

func TestSetRejectsEmptyToken(t *testing.T) {
	s := NewMemory()
	assert.Error(t, s.Set("", time.Hour))
	assert.False(t, s.IsActive())
}

func TestSetNonPositiveTTLUsesDefault(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := NewMemory()
	s.now = clock.now

	require.NoError(t, s.Set("tok", 0))
	assert.Equal(t, clock.now().Add(DefaultTTL), s.ExpiresAt())
}

func TestFileStorePersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.json")

	s, err := Open(path)
	require.NoError(t, err)
	assert.False(t, s.IsActive(), "missing file is an empty store")

	require.NoError(t, s.Set("persisted", time.Hour))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}

	reopened, err := Open(path)
	require.NoError(t, err)
	tok, ok := reopened.Get()
	assert.True(t, ok)
	assert.Equal(t, "persisted", tok)

	require.NoError(t, reopened.Clear())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "Clear removes the file")
	require.NoError(t, reopened.Clear(), "clearing twice is fine")
}

func TestOpenCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := Open(path)
	assert.Error(t, err)
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := NewMemory()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.Set("tok", time.Hour)
		}()
		go func() {
			defer wg.Done()
			s.Get()
			s.IsActive()
		}()
	}
	wg.Wait()
	assert.True(t, s.IsActive())
}
