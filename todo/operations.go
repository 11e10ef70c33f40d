package todo

import (
	"fmt"

	"github.com/amonks/todomvc/internal/ids"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes password with the given bcrypt cost.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// InsertUser creates a user with an empty todo list.
func (s *Store) InsertUser(email, password string) (User, error) {
	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return User{}, err
	}
	if err := ValidatePassword(password); err != nil {
		return User{}, err
	}

	hash, err := HashPassword(password, s.bcryptCost)
	if err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return User{}, ErrStoreClosed
	}

	if _, ok := s.index.userByEmail[email]; ok {
		return User{}, ErrUserExists
	}

	user := User{ID: ids.New(), Email: email}
	s.data.Users = append(s.data.Users, user)
	s.data.Passwords = append(s.data.Passwords, Password{UserID: user.ID, Hash: hash})
	s.reindex()
	s.changed(user.ID)
	return user, nil
}

// UserByEmail returns the user registered with email.
func (s *Store) UserByEmail(email string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.index.userByEmail[NormalizeEmail(email)]
	if !ok {
		return User{}, fmt.Errorf("%w: %s", ErrUserNotFound, email)
	}
	return *record.user, nil
}

// UserByID returns the user with the given ID.
func (s *Store) UserByID(userID string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.index.userByID[userID]
	if !ok {
		return User{}, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	return *user, nil
}

// VerifyLogin returns the user if password matches the stored hash.
func (s *Store) VerifyLogin(email, password string) (User, error) {
	s.mu.Lock()
	record, ok := s.index.userByEmail[NormalizeEmail(email)]
	var user User
	var hash string
	if ok {
		user = *record.user
		hash = record.password.Hash
	}
	s.mu.Unlock()

	if !ok {
		return User{}, ErrInvalidLogin
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return User{}, ErrInvalidLogin
	}
	return user, nil
}

// SelectTodos returns a copy of the user's todos and the list revision.
// The revision increases with every change to the list.
func (s *Store) SelectTodos(userID string) ([]Todo, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, ok := s.index.todosByUserID[userID]
	if !ok {
		return nil, 0, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}

	todos := make([]Todo, len(list))
	for i, todo := range list {
		todos[i] = *todo
	}
	return todos, s.revisions[userID], nil
}

// InsertTodo appends a new incomplete todo to the user's list.
func (s *Store) InsertTodo(userID, title string) (Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Todo{}, ErrStoreClosed
	}

	if _, ok := s.index.todosByUserID[userID]; !ok {
		return Todo{}, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}

	now := s.now()
	todo := Todo{
		ID:        ids.New(),
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.data.Todos = append(s.data.Todos, todo)
	s.reindex()
	s.changed(userID)
	return todo, nil
}

// DeleteTodo removes one todo from the user's list.
func (s *Store) DeleteTodo(userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.findTodo(userID, id); err != nil {
		return err
	}

	s.removeTodos(func(todo *Todo) bool {
		return todo.UserID == userID && todo.ID == id
	})
	s.changed(userID)
	return nil
}

// DeleteCompleteTodos removes every complete todo from the user's list
// and returns how many were removed.
func (s *Store) DeleteCompleteTodos(userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkList(userID); err != nil {
		return 0, err
	}

	count := s.removeTodos(func(todo *Todo) bool {
		return todo.UserID == userID && todo.Complete
	})
	if count > 0 {
		s.changed(userID)
	}
	return count, nil
}

// UpdateAllComplete sets complete on every todo in the user's list and
// returns how many changed.
func (s *Store) UpdateAllComplete(userID string, complete bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkList(userID); err != nil {
		return 0, err
	}

	now := s.now()
	count := 0
	for _, todo := range s.index.todosByUserID[userID] {
		if todo.Complete == complete {
			continue
		}
		todo.Complete = complete
		todo.UpdatedAt = now
		count++
	}
	if count > 0 {
		s.changed(userID)
	}
	return count, nil
}

// UpdateComplete sets complete on one todo.
func (s *Store) UpdateComplete(userID, id string, complete bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	todo, err := s.findTodo(userID, id)
	if err != nil {
		return err
	}
	todo.Complete = complete
	todo.UpdatedAt = s.now()
	s.changed(userID)
	return nil
}

// UpdateTitle sets the title of one todo.
func (s *Store) UpdateTitle(userID, id, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	todo, err := s.findTodo(userID, id)
	if err != nil {
		return err
	}
	todo.Title = title
	todo.UpdatedAt = s.now()
	s.changed(userID)
	return nil
}

// checkList verifies the store is open and the user has a list.
// Callers hold s.mu.
func (s *Store) checkList(userID string) error {
	if s.closed {
		return ErrStoreClosed
	}
	if _, ok := s.index.todosByUserID[userID]; !ok {
		return fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	return nil
}

// findTodo returns the indexed todo. Callers hold s.mu.
func (s *Store) findTodo(userID, id string) (*Todo, error) {
	if err := s.checkList(userID); err != nil {
		return nil, err
	}
	for _, todo := range s.index.todosByUserID[userID] {
		if todo.ID == id {
			return todo, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrTodoNotFound, id)
}

// removeTodos compacts s.data.Todos, dropping matches, and reindexes.
// Callers hold s.mu.
func (s *Store) removeTodos(match func(*Todo) bool) int {
	kept := s.data.Todos[:0]
	removed := 0
	for i := range s.data.Todos {
		if match(&s.data.Todos[i]) {
			removed++
			continue
		}
		kept = append(kept, s.data.Todos[i])
	}
	s.data.Todos = kept
	s.reindex()
	return removed
}
