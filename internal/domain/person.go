package domain

import (
	"strings"
	"time"
)

// Person represents one assignable staff member.
type Person struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewPerson constructs a new value for this package.
func NewPerson(id, name string, now time.Time) (Person, error) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	if id == "" {
		return Person{}, ErrInvalidID
	}
	if name == "" {
		return Person{}, ErrInvalidName
	}
	return Person{
		ID:        id,
		Name:      name,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}, nil
}

// Rename renames the requested operation.
func (p *Person) Rename(name string, now time.Time) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}
	p.Name = name
	p.UpdatedAt = now.UTC()
	return nil
}
