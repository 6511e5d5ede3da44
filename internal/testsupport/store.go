package testsupport

import (
	"testing"

	"capestudio/internal/capestore"
	"capestudio/internal/config"
)

// MustOpenStore opens a capestore.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *capestore.Store {
	t.Helper()

	store, err := capestore.Open(cfg)
	if err != nil {
		t.Fatalf("capestore.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
