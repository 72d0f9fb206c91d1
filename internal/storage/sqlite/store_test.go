package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/ajofund/ajo/internal/storage"
	"github.com/ajofund/ajo/internal/storage/storagetest"
)

func openStore(t *testing.T) storage.Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "ajo.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path rejection")
	}
}

func TestStoreConformance(t *testing.T) {
	storagetest.Run(t, openStore)
}
