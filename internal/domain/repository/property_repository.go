package repository

import (
	"context"

	"github.com/homehunt/homehunt-api/internal/domain/entity"
)

// Listing sort orders accepted by ListFilter.Sort.
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
)

// ListFilter carries the public browse/filter parameters.
type ListFilter struct {
	Search       string // case-insensitive substring on title
	Location     string // case-insensitive substring on location
	PropertyType string
	MinPrice     *float64
	MaxPrice     *float64
	Sort         string // one of the Sort* constants; empty means newest
	Page         int    // 1-based
	Limit        int
}

// PropertyRepository defines persistence for listings. Mutations are scoped
// to the owning agent; a mismatch surfaces as ErrNotFound so ownership is
// not leaked.
type PropertyRepository interface {
	Create(ctx context.Context, p *entity.Property) error
	GetByID(ctx context.Context, id string) (*entity.Property, error)
	List(ctx context.Context, f ListFilter) ([]entity.Property, int, error)
	ListByOwner(ctx context.Context, ownerID string) ([]entity.Property, error)
	CountByOwner(ctx context.Context, ownerID string) (int, error)
	UpdateOwned(ctx context.Context, p *entity.Property, ownerID string) error
	DeleteOwned(ctx context.Context, id, ownerID string) error
}
