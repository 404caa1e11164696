// Package catalog manages an organization's services: the components shown
// on its status page, their statuses and their status history.
package catalog

import (
	"context"

	"github.com/bissquit/statusdeck/internal/domain"
)

// ServiceFilter narrows service listings.
type ServiceFilter struct {
	// PublicOnly restricts the listing to services visible on the public page.
	PublicOnly bool
}

// Repository defines the interface for service storage.
type Repository interface {
	CreateService(ctx context.Context, service *domain.Service) error
	GetService(ctx context.Context, orgID, id string) (*domain.Service, error)
	ListServices(ctx context.Context, orgID string, filter ServiceFilter) ([]domain.Service, error)
	CountServices(ctx context.Context, orgID string) (int, error)
	UpdateService(ctx context.Context, service *domain.Service) error
	DeleteService(ctx context.Context, orgID, id string) error

	CreateHistoryEntry(ctx context.Context, entry *domain.ServiceHistoryEntry) error
	ListHistory(ctx context.Context, serviceID string, limit int) ([]domain.ServiceHistoryEntry, error)
}
