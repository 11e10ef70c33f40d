package todo

import (
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var testNow = time.Date(2024, 3, 2, 9, 12, 0, 0, time.UTC)

func openTestStore(t *testing.T, opts OpenOptions) *Store {
	t.Helper()

	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.MinCost
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return testNow }
	}
	if opts.SaveDelay == 0 {
		opts.SaveDelay = time.Hour
	}

	store, err := Open(filepath.Join(t.TempDir(), DefaultFilename), opts)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

func newTestUser(t *testing.T, store *Store, email string) User {
	t.Helper()

	user, err := store.InsertUser(email, "password123")
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	return user
}
