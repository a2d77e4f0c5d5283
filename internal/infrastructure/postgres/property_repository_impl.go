package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/homehunt/homehunt-api/internal/domain/entity"
	"github.com/homehunt/homehunt-api/internal/domain/repository"
)

type PropertyRepository struct {
	pool *pgxpool.Pool
}

func NewPropertyRepository(pool *pgxpool.Pool) *PropertyRepository {
	return &PropertyRepository{pool: pool}
}

const propertyColumns = `
	p.id, p.title, COALESCE(p.description, ''), p.price, p.location,
	p.property_type, p.images, p.created_by, p.created_at, p.updated_at,
	u.id, COALESCE(u.name, ''), u.email, COALESCE(u.phone, '')
`

const propertyJoin = `FROM properties p JOIN users u ON u.id = p.created_by`

func scanProperty(row pgx.Row) (*entity.Property, error) {
	p := &entity.Property{Owner: &entity.OwnerContact{}}
	if err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.Location,
		&p.PropertyType, &p.Images, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
		&p.Owner.ID, &p.Owner.Name, &p.Owner.Email, &p.Owner.Phone); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	return p, nil
}

func (r *PropertyRepository) Create(ctx context.Context, p *entity.Property) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO properties (title, description, price, location, property_type, images, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, p.Title, p.Description, p.Price, p.Location, p.PropertyType, p.Images, p.CreatedBy)
	return row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *PropertyRepository) GetByID(ctx context.Context, id string) (*entity.Property, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+propertyColumns+` `+propertyJoin+`
		WHERE p.id = $1
	`, id)
	return scanProperty(row)
}

// whereClause builds the filter predicate and its arguments. Args start at $1.
func whereClause(f repository.ListFilter) (string, []any) {
	var conds []string
	var args []any

	add := func(cond string, val any) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Search != "" {
		add("p.title ILIKE '%%' || $%d || '%%'", f.Search)
	}
	if f.Location != "" {
		add("p.location ILIKE '%%' || $%d || '%%'", f.Location)
	}
	if f.PropertyType != "" {
		add("p.property_type = $%d", f.PropertyType)
	}
	if f.MinPrice != nil {
		add("p.price >= $%d", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add("p.price <= $%d", *f.MaxPrice)
	}
	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func orderClause(sort string) string {
	switch sort {
	case repository.SortPriceAsc:
		return "ORDER BY p.price ASC"
	case repository.SortPriceDesc:
		return "ORDER BY p.price DESC"
	default:
		return "ORDER BY p.created_at DESC"
	}
}

func (r *PropertyRepository) List(ctx context.Context, f repository.ListFilter) ([]entity.Property, int, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 6
	}

	where, args := whereClause(f)

	var total int
	countQuery := "SELECT COUNT(*) FROM properties p " + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT %s %s %s %s LIMIT $%d OFFSET $%d",
		propertyColumns, propertyJoin, where, orderClause(f.Sort),
		len(args)+1, len(args)+2)
	args = append(args, f.Limit, (f.Page-1)*f.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items, err := collectProperties(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *PropertyRepository) ListByOwner(ctx context.Context, ownerID string) ([]entity.Property, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+propertyColumns+` `+propertyJoin+`
		WHERE p.created_by = $1
		ORDER BY p.created_at DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProperties(rows)
}

func (r *PropertyRepository) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM properties WHERE created_by = $1
	`, ownerID).Scan(&n)
	return n, err
}

func (r *PropertyRepository) UpdateOwned(ctx context.Context, p *entity.Property, ownerID string) error {
	p.UpdatedAt = time.Now()
	// Nil images keep the stored ones (no new uploads on this edit).
	res, err := r.pool.Exec(ctx, `
		UPDATE properties
		SET title = $1, description = $2, price = $3, location = $4,
		    property_type = $5, images = COALESCE($6, images), updated_at = $7
		WHERE id = $8 AND created_by = $9
	`, p.Title, p.Description, p.Price, p.Location, p.PropertyType, p.Images, p.UpdatedAt, p.ID, ownerID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PropertyRepository) DeleteOwned(ctx context.Context, id, ownerID string) error {
	res, err := r.pool.Exec(ctx, `
		DELETE FROM properties WHERE id = $1 AND created_by = $2
	`, id, ownerID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func collectProperties(rows pgx.Rows) ([]entity.Property, error) {
	items := make([]entity.Property, 0)
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

var _ repository.PropertyRepository = (*PropertyRepository)(nil)
