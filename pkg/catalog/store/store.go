// Package store provides persistence for catalog entities.
//
// Two backends are available:
//   - FileStore: JSON documents on disk, one file per collection. Matches
//     the single-binary CLI deployment and needs no external services.
//   - MongoStore: MongoDB-backed storage for server deployments.
//
// Both backends implement [Store]. All mutating operations are atomic at
// the entity level; the file backend additionally serializes access with
// an internal mutex so the HTTP layer can call it from multiple handlers.
package store

import (
	"context"
	"errors"

	"github.com/promopress/promopress/pkg/catalog"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")
)

// ProductFilter narrows product listings.
type ProductFilter struct {
	// Search matches case-insensitively against name and description.
	Search string

	// Category matches the product category exactly. Empty matches all.
	Category string
}

// Store is the interface for catalog persistence backends.
type Store interface {
	// Products lists products matching the filter.
	Products(ctx context.Context, f ProductFilter) ([]catalog.Product, error)

	// Product fetches one product by id. Returns ErrNotFound if absent.
	Product(ctx context.Context, id string) (catalog.Product, error)

	// PutProduct inserts or replaces a product.
	PutProduct(ctx context.Context, p catalog.Product) error

	// DeleteProduct removes a product. Returns ErrNotFound if absent.
	DeleteProduct(ctx context.Context, id string) error

	// Templates lists a user's page templates.
	Templates(ctx context.Context, userID string) ([]catalog.Template, error)

	// PutTemplate inserts or replaces a template.
	PutTemplate(ctx context.Context, t catalog.Template) error

	// DeleteTemplate removes a template. Returns ErrNotFound if absent.
	DeleteTemplate(ctx context.Context, id string) error

	// Logos lists a user's logos.
	Logos(ctx context.Context, userID string) ([]catalog.Logo, error)

	// ActiveLogo returns the user's active logo, or ErrNotFound when no
	// logo is active.
	ActiveLogo(ctx context.Context, userID string) (catalog.Logo, error)

	// PutLogo inserts or replaces a logo. When l.Active is true any other
	// active logo of the same user is deactivated.
	PutLogo(ctx context.Context, l catalog.Logo) error

	// DeleteLogo removes a logo. Returns ErrNotFound if absent.
	DeleteLogo(ctx context.Context, id string) error

	// Campaigns lists a user's campaigns.
	Campaigns(ctx context.Context, userID string) ([]catalog.Campaign, error)

	// Campaign fetches one campaign by id. Returns ErrNotFound if absent.
	Campaign(ctx context.Context, id string) (catalog.Campaign, error)

	// PutCampaign inserts or replaces a campaign.
	PutCampaign(ctx context.Context, c catalog.Campaign) error

	// DeleteCampaign removes a campaign. Returns ErrNotFound if absent.
	DeleteCampaign(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}

// matchProduct applies a ProductFilter to one product.
func matchProduct(p catalog.Product, f ProductFilter) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Search == "" {
		return true
	}
	return containsFold(p.Name, f.Search) || containsFold(p.Description, f.Search)
}
