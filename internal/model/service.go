package model

import (
	"errors"
	"strings"
	"time"

	"github.com/Ashfaaq98/signalroot-console/internal/query"
)

// Service is a monitored service in the registry.
type Service struct {
	ID          string    `json:"id" yaml:"id,omitempty"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description" yaml:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt" yaml:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt" yaml:"updatedAt,omitempty"`
}

// ErrServiceNameRequired is returned when a service has no name.
var ErrServiceNameRequired = errors.New("service name is required")

// Validate checks that the service can be saved.
func (s Service) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrServiceNameRequired
	}
	return nil
}

// ServiceSchema searches name and description.
var ServiceSchema = query.Schema[Service]{
	Text: []func(Service) string{
		func(s Service) string { return s.Name },
		func(s Service) string { return s.Description },
	},
	Keys: map[string]func(Service) query.Value{
		KeyName:      func(s Service) query.Value { return query.String(s.Name) },
		KeyCreatedAt: func(s Service) query.Value { return query.Time(s.CreatedAt) },
	},
}
