package todo

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultFilename is the name of the JSON file holding the store.
	DefaultFilename = "todos-persisted.json"

	// DefaultSaveDelay is how long writes are coalesced before saving.
	DefaultSaveDelay = 500 * time.Millisecond
)

// Store is an in-memory index over a JSON file.
//
// Mutations update memory immediately and schedule a debounced save;
// Flush and Close write any pending changes synchronously.
type Store struct {
	path       string
	now        func() time.Time
	bcryptCost int
	logger     *log.Logger

	mu        sync.Mutex
	data      Data
	index     index
	revisions map[string]uint64
	closed    bool

	saver *saver
}

type index struct {
	userByID      map[string]*User
	userByEmail   map[string]userRecord
	todosByUserID map[string][]*Todo
}

type userRecord struct {
	user     *User
	password *Password
}

// OpenOptions configures how the store is opened.
type OpenOptions struct {
	// SaveDelay coalesces writes. Defaults to DefaultSaveDelay.
	SaveDelay time.Duration

	// Seed supplies YAML seed data used when the file does not exist.
	// If nil, the embedded seed is used.
	Seed io.Reader

	// NoSeed starts an empty store when the file does not exist.
	NoSeed bool

	// BcryptCost is the cost used for new password hashes.
	// Defaults to bcrypt.DefaultCost.
	BcryptCost int

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	// Logger receives save errors. Defaults to a stderr logger.
	Logger *log.Logger
}

// Open loads the store at path, seeding it when the file does not exist.
func Open(path string, opts OpenOptions) (*Store, error) {
	if opts.SaveDelay <= 0 {
		opts.SaveDelay = DefaultSaveDelay
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.New(os.Stderr, "store: ", log.LstdFlags)
	}

	s := &Store{
		path:       path,
		now:        opts.Now,
		bcryptCost: opts.BcryptCost,
		logger:     opts.Logger,
		revisions:  make(map[string]uint64),
	}
	s.saver = newSaver(opts.SaveDelay, s.save, s.logger)

	data, err := readData(path)
	seeded := false
	if errors.Is(err, os.ErrNotExist) {
		data, err = s.seedData(opts)
		seeded = true
	}
	if err != nil {
		return nil, err
	}

	s.data = data
	s.index = buildIndex(&s.data)

	if seeded {
		if err := s.save(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) seedData(opts OpenOptions) (Data, error) {
	if opts.NoSeed {
		return Data{}, nil
	}
	seed, err := loadSeed(opts.Seed)
	if err != nil {
		return Data{}, err
	}
	return seed.build(s.bcryptCost)
}

// Path returns the file backing the store.
func (s *Store) Path() string {
	return s.path
}

// Flush writes pending changes to disk immediately.
func (s *Store) Flush() error {
	return s.saver.flush()
}

// Close flushes pending changes and rejects further operations.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	return s.saver.flush()
}

// buildIndex indexes data. Every user gets a todo list, even an empty one.
func buildIndex(data *Data) index {
	idx := index{
		userByID:      make(map[string]*User, len(data.Users)),
		userByEmail:   make(map[string]userRecord, len(data.Users)),
		todosByUserID: make(map[string][]*Todo, len(data.Users)),
	}

	for i := range data.Users {
		user := &data.Users[i]
		idx.userByID[user.ID] = user
		idx.todosByUserID[user.ID] = nil
	}
	for i := range data.Passwords {
		password := &data.Passwords[i]
		if user, ok := idx.userByID[password.UserID]; ok {
			idx.userByEmail[user.Email] = userRecord{user: user, password: password}
		}
	}
	for i := range data.Todos {
		todo := &data.Todos[i]
		if _, ok := idx.userByID[todo.UserID]; !ok {
			continue
		}
		idx.todosByUserID[todo.UserID] = append(idx.todosByUserID[todo.UserID], todo)
	}

	return idx
}

// changed records a mutation of userID's data. Callers hold s.mu.
func (s *Store) changed(userID string) {
	s.revisions[userID]++
	s.saver.notify()
}

// reindex rebuilds the index after the backing slices were reallocated.
// Callers hold s.mu.
func (s *Store) reindex() {
	s.index = buildIndex(&s.data)
}

func (s *Store) save() error {
	s.mu.Lock()
	encoded, err := json.MarshalIndent(nonNilData(s.data), "", "  ")
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}

	return withFileLock(s.path+".lock", func() error {
		return writeFileAtomic(s.path, encoded)
	})
}

func nonNilData(data Data) Data {
	if data.Users == nil {
		data.Users = []User{}
	}
	if data.Passwords == nil {
		data.Passwords = []Password{}
	}
	if data.Todos == nil {
		data.Todos = []Todo{}
	}
	return data
}

func readData(path string) (Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Data{}, err
		}
		return Data{}, fmt.Errorf("read store %s: %w", path, err)
	}

	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return Data{}, fmt.Errorf("parse store %s: %w", path, err)
	}
	return data, nil
}

// withFileLock executes fn while holding an exclusive lock on the file at path.
// Creates the file if it doesn't exist.
func withFileLock(path string, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("open file for locking: %w", err)
	}
	defer f.Close()

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	defer syscall.Flock(int(f.Fd()), syscall.LOCK_UN)

	return fn()
}

// writeFileAtomic replaces path with data via a temp file and rename.
func writeFileAtomic(path string, data []byte) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}
