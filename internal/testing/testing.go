// package testing contains shared testing utilities
package testing

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/desertthunder/ytparty/internal/shared"
	"github.com/desertthunder/ytparty/internal/store"
)

// CountingStore wraps an [store.IdentityStore] and counts writes per key.
type CountingStore struct {
	store.IdentityStore

	mu      sync.Mutex
	sets    map[string]int
	removes map[string]int
}

func NewCountingStore(inner store.IdentityStore) *CountingStore {
	return &CountingStore{IdentityStore: inner, sets: map[string]int{}, removes: map[string]int{}}
}

func (c *CountingStore) Set(key string, value []byte) error {
	c.mu.Lock()
	c.sets[key]++
	c.mu.Unlock()
	return c.IdentityStore.Set(key, value)
}

func (c *CountingStore) Remove(key string) error {
	c.mu.Lock()
	c.removes[key]++
	c.mu.Unlock()
	return c.IdentityStore.Remove(key)
}

// Writes returns the total number of Set and Remove calls.
func (c *CountingStore) Writes() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, v := range c.sets {
		n += v
	}
	for _, v := range c.removes {
		n += v
	}
	return n
}

// Sets returns the number of Set calls for key.
func (c *CountingStore) Sets(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sets[key]
}

// FailingStore fails reads or writes on the listed keys and delegates the rest.
type FailingStore struct {
	store.IdentityStore
	FailReads  map[string]bool
	FailWrites map[string]bool
}

func NewFailingStore(inner store.IdentityStore) *FailingStore {
	return &FailingStore{IdentityStore: inner, FailReads: map[string]bool{}, FailWrites: map[string]bool{}}
}

func (f *FailingStore) Get(key string) ([]byte, error) {
	if f.FailReads[key] {
		return nil, fmt.Errorf("%w: get %q: quota exceeded", shared.ErrStorageUnavailable, key)
	}
	return f.IdentityStore.Get(key)
}

func (f *FailingStore) Set(key string, value []byte) error {
	if f.FailWrites[key] {
		return fmt.Errorf("%w: set %q: quota exceeded", shared.ErrStorageUnavailable, key)
	}
	return f.IdentityStore.Set(key, value)
}

func (f *FailingStore) Remove(key string) error {
	if f.FailWrites[key] {
		return fmt.Errorf("%w: remove %q: storage disabled", shared.ErrStorageUnavailable, key)
	}
	return f.IdentityStore.Remove(key)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MustGet reads key from s or fails the test.
func MustGet(t *testing.T, s store.IdentityStore, key string) []byte {
	t.Helper()
	v, err := s.Get(key)
	if err != nil {
		t.Fatalf("failed to get %s: %v", key, err)
	}
	return v
}

// MustSet writes value to key or fails the test.
func MustSet(t *testing.T, s store.IdentityStore, key, value string) {
	t.Helper()
	if err := s.Set(key, []byte(value)); err != nil {
		t.Fatalf("failed to set %s: %v", key, err)
	}
}

// WriteFile writes content to name under a fresh temp dir and returns its path.
func WriteFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
	return path
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}
