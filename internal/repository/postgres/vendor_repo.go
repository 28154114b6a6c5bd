// internal/repository/postgres/vendor_repo.go
package postgres

import (
	"context"
	"fmt"

	"coldlist-service/internal/domain/vendor"
	xerrors "coldlist-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
)

const vendorColumns = `id, name, email, phone, active, owner_id, user_id, created_at, updated_at`

type VendorRepository struct {
	db *DB
}

func NewVendorRepository(db *DB) *VendorRepository {
	return &VendorRepository{db: db}
}

func (r *VendorRepository) Create(ctx context.Context, v *vendor.Vendor) error {
	query := `
		INSERT INTO vendors (name, email, phone, active, owner_id, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.db.pool.QueryRow(ctx, query,
		v.Name, v.Email, v.Phone, v.Active, v.OwnerID, v.UserID,
	).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create vendor: %w", err)
	}

	return nil
}

func (r *VendorRepository) FindByID(ctx context.Context, id int64) (*vendor.Vendor, error) {
	query := `SELECT ` + vendorColumns + ` FROM vendors WHERE id = $1`

	v, err := scanVendor(r.db.pool.QueryRow(ctx, query, id))
	if notFound(err) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find vendor: %w", err)
	}

	return v, nil
}

// FindByIDs returns the vendors that exist among ids, in no particular order.
func (r *VendorRepository) FindByIDs(ctx context.Context, ids []int64) ([]vendor.Vendor, error) {
	if len(ids) == 0 {
		return []vendor.Vendor{}, nil
	}
	query := `SELECT ` + vendorColumns + ` FROM vendors WHERE id = ANY($1)`
	return r.queryVendors(ctx, query, pq.Int64Array(ids))
}

// FindByUserID returns every vendor linked to the login userID.
func (r *VendorRepository) FindByUserID(ctx context.Context, userID int64) ([]vendor.Vendor, error) {
	query := `SELECT ` + vendorColumns + ` FROM vendors WHERE user_id = $1 ORDER BY id`
	return r.queryVendors(ctx, query, userID)
}

func (r *VendorRepository) ListByOwner(ctx context.Context, ownerID int64, filters *vendor.VendorListFilters) ([]vendor.Vendor, error) {
	query := `SELECT ` + vendorColumns + ` FROM vendors WHERE owner_id = $1`
	args := []interface{}{ownerID}

	if filters != nil && filters.Active != nil {
		query += " AND active = $2"
		args = append(args, *filters.Active)
	}
	query += " ORDER BY name"

	return r.queryVendors(ctx, query, args...)
}

func (r *VendorRepository) Update(ctx context.Context, v *vendor.Vendor) error {
	query := `
		UPDATE vendors
		SET name = $2, email = $3, phone = $4, active = $5, user_id = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.pool.QueryRow(ctx, query,
		v.ID, v.Name, v.Email, v.Phone, v.Active, v.UserID,
	).Scan(&v.UpdatedAt)
	if notFound(err) {
		return xerrors.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update vendor: %w", err)
	}

	return nil
}

func (r *VendorRepository) Delete(ctx context.Context, id int64) error {
	return execOne(ctx, r.db.pool, "delete vendor", `DELETE FROM vendors WHERE id = $1`, id)
}

func (r *VendorRepository) CountOpenColdLists(ctx context.Context, vendorID int64) (int, error) {
	query := `SELECT COUNT(*) FROM cold_lists WHERE status <> 'cancelled' AND $1 = ANY(selected_vendors)`

	var n int
	if err := r.db.pool.QueryRow(ctx, query, vendorID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cold lists: %w", err)
	}
	return n, nil
}

func (r *VendorRepository) queryVendors(ctx context.Context, query string, args ...interface{}) ([]vendor.Vendor, error) {
	rows, err := r.db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list vendors: %w", err)
	}
	defer rows.Close()

	vendors := []vendor.Vendor{}
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vendor: %w", err)
		}
		vendors = append(vendors, *v)
	}

	return vendors, rows.Err()
}

func scanVendor(row pgx.Row) (*vendor.Vendor, error) {
	var v vendor.Vendor
	err := row.Scan(
		&v.ID, &v.Name, &v.Email, &v.Phone, &v.Active, &v.OwnerID, &v.UserID,
		&v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
