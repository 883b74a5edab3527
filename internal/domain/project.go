package domain

import (
	"slices"
	"strings"
	"time"
)

// ProjectHealth is derived by the finance screens and consumed here as-is.
type ProjectHealth string

// ProjectHealth values.
const (
	HealthGood     ProjectHealth = "good"
	HealthWarning  ProjectHealth = "warning"
	HealthCritical ProjectHealth = "critical"
)

var validHealth = []ProjectHealth{HealthGood, HealthWarning, HealthCritical}

// Project represents project data used by this package.
type Project struct {
	ID        string
	Code      string
	Name      string
	Health    ProjectHealth
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewProject constructs a new value for this package.
func NewProject(id, code, name string, health ProjectHealth, now time.Time) (Project, error) {
	id = strings.TrimSpace(id)
	code = strings.ToUpper(strings.TrimSpace(code))
	name = strings.TrimSpace(name)
	if id == "" {
		return Project{}, ErrInvalidID
	}
	if code == "" {
		return Project{}, ErrInvalidCode
	}
	if name == "" {
		return Project{}, ErrInvalidName
	}
	health, err := normalizeHealth(health)
	if err != nil {
		return Project{}, err
	}

	return Project{
		ID:        id,
		Code:      code,
		Name:      name,
		Health:    health,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}, nil
}

// SetHealth stores the externally derived health value.
func (p *Project) SetHealth(health ProjectHealth, now time.Time) error {
	health, err := normalizeHealth(health)
	if err != nil {
		return err
	}
	p.Health = health
	p.UpdatedAt = now.UTC()
	return nil
}

// normalizeHealth normalizes health and applies the good default.
func normalizeHealth(health ProjectHealth) (ProjectHealth, error) {
	health = ProjectHealth(strings.ToLower(strings.TrimSpace(string(health))))
	if health == "" {
		return HealthGood, nil
	}
	if !slices.Contains(validHealth, health) {
		return "", ErrInvalidHealth
	}
	return health, nil
}
