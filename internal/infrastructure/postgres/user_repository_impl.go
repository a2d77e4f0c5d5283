package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/homehunt/homehunt-api/internal/domain/entity"
	"github.com/homehunt/homehunt-api/internal/domain/repository"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `
	id, email, COALESCE(password_hash, ''), COALESCE(name, ''),
	COALESCE(phone, ''), COALESCE(address, ''), role, is_active, is_verified,
	COALESCE(otp_hash, ''), otp_expires_at, created_at, updated_at
`

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	if err := row.Scan(&u.ID, &u.Email, &u.Password, &u.Name, &u.Phone,
		&u.Address, &u.Role, &u.IsActive, &u.IsVerified,
		&u.OTPHash, &u.OTPExpiresAt, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id)
	return scanUser(row)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1
	`, email)
	return scanUser(row)
}

func (r *UserRepository) UpsertOTPChallenge(ctx context.Context, email, otpHash string, expiresAt time.Time) error {
	// Placeholder identities start unverified with the default role; a
	// pending challenge is simply overwritten (last writer wins).
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (email, role, is_active, is_verified, otp_hash, otp_expires_at)
		VALUES ($1, 'user', TRUE, FALSE, $2, $3)
		ON CONFLICT (email) DO UPDATE
		SET otp_hash = EXCLUDED.otp_hash,
		    otp_expires_at = EXCLUDED.otp_expires_at,
		    updated_at = now()
	`, email, otpHash, expiresAt)
	return err
}

func (r *UserRepository) ConsumeOTPChallenge(ctx context.Context, email, otpHash string, now time.Time) (bool, error) {
	// Single conditional update: of two racing verifies with the same valid
	// code, exactly one matches the row before the hash is nulled out.
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET otp_hash = NULL, otp_expires_at = NULL, updated_at = now()
		WHERE email = $1 AND otp_hash = $2 AND otp_expires_at > $3
	`, email, otpHash, now)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() == 1, nil
}

func (r *UserRepository) FinalizeRegistration(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		UPDATE users
		SET name = $2, password_hash = $3, role = $4, is_verified = TRUE, updated_at = now()
		WHERE email = $1
		RETURNING id, created_at, updated_at
	`, u.Email, u.Name, u.Password, u.Role)
	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.ErrNotFound
		}
		return err
	}
	u.IsVerified = true
	return nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now()
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET name = $1, phone = $2, address = $3, updated_at = $4
		WHERE id = $5
	`, u.Name, u.Phone, u.Address, u.UpdatedAt, u.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) SavedPropertyIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT property_id
		FROM saved_properties
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *UserRepository) IsPropertySaved(ctx context.Context, userID, propertyID string) (bool, error) {
	var saved bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM saved_properties WHERE user_id = $1 AND property_id = $2
		)
	`, userID, propertyID).Scan(&saved)
	return saved, err
}

func (r *UserRepository) SaveProperty(ctx context.Context, userID, propertyID string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO saved_properties (user_id, property_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, property_id) DO NOTHING
	`, userID, propertyID)
	return err
}

func (r *UserRepository) UnsaveProperty(ctx context.Context, userID, propertyID string) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM saved_properties
		WHERE user_id = $1 AND property_id = $2
	`, userID, propertyID)
	return err
}

var _ repository.UserRepository = (*UserRepository)(nil)
