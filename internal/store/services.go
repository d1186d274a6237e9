package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Ashfaaq98/signalroot-console/internal/model"
)

// CreateService inserts a service with a fresh id and returns it.
func (s *Store) CreateService(ctx context.Context, svc model.Service) (model.Service, error) {
	svc.Name = strings.TrimSpace(svc.Name)
	if err := svc.Validate(); err != nil {
		return model.Service{}, err
	}
	if svc.ID == "" {
		svc.ID = uuid.NewString()
	}
	now := time.Now()
	if svc.CreatedAt.IsZero() {
		svc.CreatedAt = now
	}
	svc.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO services (id, name, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		svc.ID, svc.Name, svc.Description, svc.CreatedAt.UnixNano(), svc.UpdatedAt.UnixNano())
	if err != nil {
		return model.Service{}, fmt.Errorf("failed to create service %s: %w", svc.Name, err)
	}
	return svc, nil
}

// UpdateService changes a service's name and description.
func (s *Store) UpdateService(ctx context.Context, svc model.Service) (model.Service, error) {
	svc.Name = strings.TrimSpace(svc.Name)
	if err := svc.Validate(); err != nil {
		return model.Service{}, err
	}
	svc.UpdatedAt = time.Now()

	res, err := s.db.ExecContext(ctx,
		`UPDATE services SET name = ?, description = ?, updated_at = ? WHERE id = ?`,
		svc.Name, svc.Description, svc.UpdatedAt.UnixNano(), svc.ID)
	if err != nil {
		return model.Service{}, fmt.Errorf("failed to update service %s: %w", svc.ID, err)
	}
	if err := expectOne(res, "service", svc.ID); err != nil {
		return model.Service{}, err
	}
	return s.GetService(ctx, svc.ID)
}

// DeleteService removes a service.
func (s *Store) DeleteService(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM services WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete service %s: %w", id, err)
	}
	return expectOne(res, "service", id)
}

// GetService returns one service by id.
func (s *Store) GetService(ctx context.Context, id string) (model.Service, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, created_at, updated_at FROM services WHERE id = ?`, id)
	svc, err := scanService(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Service{}, fmt.Errorf("service %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Service{}, fmt.Errorf("failed to query service %s: %w", id, err)
	}
	return svc, nil
}

// FindServiceByName returns the service with the given name.
func (s *Store) FindServiceByName(ctx context.Context, name string) (model.Service, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, created_at, updated_at FROM services WHERE name = ?`, strings.TrimSpace(name))
	svc, err := scanService(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Service{}, fmt.Errorf("service %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return model.Service{}, fmt.Errorf("failed to query service %q: %w", name, err)
	}
	return svc, nil
}

// ListServices returns all services in creation order.
func (s *Store) ListServices(ctx context.Context) ([]model.Service, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, created_at, updated_at FROM services ORDER BY created_at ASC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query services: %w", err)
	}
	defer rows.Close()

	var services []model.Service
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan service: %w", err)
		}
		services = append(services, svc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate services: %w", err)
	}
	return services, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanService(row scanner) (model.Service, error) {
	var svc model.Service
	var description sql.NullString
	var createdAt, updatedAt int64
	if err := row.Scan(&svc.ID, &svc.Name, &description, &createdAt, &updatedAt); err != nil {
		return model.Service{}, err
	}
	svc.Description = description.String
	svc.CreatedAt = time.Unix(0, createdAt)
	svc.UpdatedAt = time.Unix(0, updatedAt)
	return svc, nil
}
