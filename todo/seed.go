package todo

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"time"

	"github.com/amonks/todomvc/internal/ids"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultSeed []byte

// Seed describes the accounts a fresh store starts with.
type Seed struct {
	Users []SeedUser `yaml:"users"`
}

// SeedUser is one seeded account and its todos.
type SeedUser struct {
	Email    string     `yaml:"email"`
	Password string     `yaml:"password"`
	Todos    []SeedTodo `yaml:"todos"`
}

// SeedTodo is one seeded todo.
type SeedTodo struct {
	Title    string    `yaml:"title"`
	Complete bool      `yaml:"complete"`
	Created  time.Time `yaml:"created"`
}

func loadSeed(r io.Reader) (Seed, error) {
	if r == nil {
		r = bytes.NewReader(defaultSeed)
	}

	var seed Seed
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&seed); err != nil && err != io.EOF {
		return Seed{}, fmt.Errorf("parse seed: %w", err)
	}
	return seed, nil
}

func (seed Seed) build(cost int) (Data, error) {
	data := Data{}
	for _, entry := range seed.Users {
		email := NormalizeEmail(entry.Email)
		if err := ValidateEmail(email); err != nil {
			return Data{}, fmt.Errorf("seed user %q: %w", entry.Email, err)
		}
		hash, err := HashPassword(entry.Password, cost)
		if err != nil {
			return Data{}, fmt.Errorf("seed user %q: %w", entry.Email, err)
		}

		user := User{ID: ids.New(), Email: email}
		data.Users = append(data.Users, user)
		data.Passwords = append(data.Passwords, Password{UserID: user.ID, Hash: hash})

		for _, item := range entry.Todos {
			data.Todos = append(data.Todos, Todo{
				ID:        ids.New(),
				UserID:    user.ID,
				Title:     item.Title,
				Complete:  item.Complete,
				CreatedAt: item.Created,
				UpdatedAt: item.Created,
			})
		}
	}
	return data, nil
}
