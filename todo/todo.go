package todo

import "time"

// Todo is a single persisted to-do item.
type Todo struct {
	// ID is a short lowercase base32 identifier.
	ID string `json:"id"`

	// UserID is the owner of the todo.
	UserID string `json:"user_id"`

	// Title is the text of the todo.
	Title string `json:"title"`

	// Complete reports whether the todo has been checked off.
	Complete bool `json:"complete"`

	// CreatedAt is when the todo was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the todo was last modified.
	UpdatedAt time.Time `json:"updated_at"`
}

// User is an account that owns a todo list.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Password holds the bcrypt hash for a user.
type Password struct {
	UserID string `json:"user_id"`
	Hash   string `json:"hash"`
}

// Data is the on-disk representation of the store.
type Data struct {
	Users     []User     `json:"users"`
	Passwords []Password `json:"passwords"`
	Todos     []Todo     `json:"todos"`
}
