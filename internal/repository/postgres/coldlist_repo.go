// internal/repository/postgres/coldlist_repo.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"coldlist-service/internal/domain/coldlist"
	xerrors "coldlist-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
)

const coldListColumns = `
	id, reference, name, description, project_id,
	clients_per_day, clients_per_vendor, selected_vendors, start_date, end_date,
	total_clients, status, tasks_generated, owner_id, assigned_user_id,
	created_at, updated_at`

const clientColumns = `
	cold_list_id, position, name, phone, extra,
	assigned_vendor_id, assigned_date, contacted, contact_date, contacted_by`

type ColdListRepository struct {
	db *DB
}

func NewColdListRepository(db *DB) *ColdListRepository {
	return &ColdListRepository{db: db}
}

// Create inserts the list header. Leads are written by ReplaceClients.
func (r *ColdListRepository) Create(ctx context.Context, l *coldlist.ColdList) error {
	query := `
		INSERT INTO cold_lists (
			reference, name, description, project_id,
			clients_per_day, clients_per_vendor, selected_vendors, start_date, end_date,
			total_clients, status, tasks_generated, owner_id, assigned_user_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at
	`

	err := r.db.pool.QueryRow(
		ctx, query,
		l.Reference, l.Name, l.Description, l.ProjectID,
		l.ClientsPerDay, l.ClientsPerVendor, l.SelectedVendors, l.StartDate, l.EndDate,
		l.TotalClients, l.Status, l.TasksGenerated, l.OwnerID, l.AssignedUserID,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create cold list: %w", err)
	}

	return nil
}

// FindByID loads a list with its leads ordered by position
func (r *ColdListRepository) FindByID(ctx context.Context, id int64) (*coldlist.ColdList, error) {
	query := `SELECT ` + coldListColumns + ` FROM cold_lists WHERE id = $1`

	l, err := scanColdList(r.db.pool.QueryRow(ctx, query, id))
	if notFound(err) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find cold list: %w", err)
	}

	clients, err := r.loadClients(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	l.Clients = clients[id]

	return l, nil
}

// ListByOwner lists lists without their leads, newest first
func (r *ColdListRepository) ListByOwner(ctx context.Context, ownerID int64, filters *coldlist.ColdListFilters) ([]coldlist.ColdList, error) {
	query := `SELECT ` + coldListColumns + ` FROM cold_lists WHERE owner_id = $1`
	args := []interface{}{ownerID}
	argPos := 2

	if filters != nil {
		if filters.ProjectID != nil {
			query += fmt.Sprintf(" AND project_id = $%d", argPos)
			args = append(args, *filters.ProjectID)
			argPos++
		}
		if filters.Status != nil {
			query += fmt.Sprintf(" AND status = $%d", argPos)
			args = append(args, *filters.Status)
		}
	}
	query += " ORDER BY id DESC"

	return r.queryColdLists(ctx, query, args...)
}

// ListForReporting returns active lists owned by ownerID or selecting any of
// vendorIDs, with their leads.
func (r *ColdListRepository) ListForReporting(ctx context.Context, ownerID int64, vendorIDs []int64) ([]coldlist.ColdList, error) {
	query := `SELECT ` + coldListColumns + `
		FROM cold_lists
		WHERE status <> 'cancelled'
		  AND (owner_id = $1 OR selected_vendors && $2::bigint[])
		ORDER BY id DESC`

	lists, err := r.queryColdLists(ctx, query, ownerID, pq.Int64Array(vendorIDs))
	if err != nil {
		return nil, err
	}
	if len(lists) == 0 {
		return lists, nil
	}

	ids := make([]int64, len(lists))
	for i := range lists {
		ids[i] = lists[i].ID
	}
	clients, err := r.loadClients(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range lists {
		lists[i].Clients = clients[lists[i].ID]
	}

	return lists, nil
}

// ReplaceClients swaps every lead of the list in one transaction.
func (r *ColdListRepository) ReplaceClients(ctx context.Context, id int64, clients []coldlist.Client) error {
	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := execOne(ctx, tx, "update cold list",
		`UPDATE cold_lists SET total_clients = $2, updated_at = NOW() WHERE id = $1`,
		id, len(clients),
	); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cold_list_clients WHERE cold_list_id = $1`, id); err != nil {
		return fmt.Errorf("failed to clear clients: %w", err)
	}

	rows := make([][]any, len(clients))
	for i, c := range clients {
		rows[i] = []any{id, i, c.Name, c.Phone, c.Extra}
	}

	_, err = tx.CopyFrom(
		ctx,
		pgx.Identifier{"cold_list_clients"},
		[]string{"cold_list_id", "position", "name", "phone", "extra"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to insert clients: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// SaveAssignments rewrites the assignment of every lead in one transaction.
func (r *ColdListRepository) SaveAssignments(ctx context.Context, id int64, assignments []coldlist.Assignment, redistribute bool) error {
	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var total int
	err = tx.QueryRow(ctx, `SELECT total_clients FROM cold_lists WHERE id = $1 FOR UPDATE`, id).Scan(&total)
	if notFound(err) {
		return xerrors.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to lock cold list: %w", err)
	}

	positions := make([]int64, len(assignments))
	vendorIDs := make([]int64, len(assignments))
	dates := make([]time.Time, len(assignments))
	for i, a := range assignments {
		if a.Position < 0 || a.Position >= total {
			return xerrors.Newf(xerrors.KindInvalidInput, "assignment for unknown position %d", a.Position)
		}
		positions[i] = int64(a.Position)
		vendorIDs[i] = a.VendorID
		dates[i] = a.Date
	}

	reset := `UPDATE cold_list_clients SET assigned_vendor_id = NULL, assigned_date = NULL`
	if redistribute {
		reset += `, contacted = FALSE, contact_date = NULL, contacted_by = NULL`
	}
	if _, err := tx.Exec(ctx, reset+` WHERE cold_list_id = $1`, id); err != nil {
		return fmt.Errorf("failed to clear assignments: %w", err)
	}

	if len(assignments) > 0 {
		query := `
			UPDATE cold_list_clients c
			SET assigned_vendor_id = a.vendor_id, assigned_date = a.assigned_date
			FROM unnest($2::bigint[], $3::bigint[], $4::timestamptz[]) AS a(position, vendor_id, assigned_date)
			WHERE c.cold_list_id = $1 AND c.position = a.position
		`
		if _, err := tx.Exec(ctx, query, id, positions, vendorIDs, dates); err != nil {
			return fmt.Errorf("failed to save assignments: %w", err)
		}
	}

	if redistribute {
		_, err = tx.Exec(ctx,
			`UPDATE cold_lists SET status = $2, tasks_generated = 0, updated_at = NOW() WHERE id = $1`,
			id, coldlist.StatusPending,
		)
	} else {
		_, err = tx.Exec(ctx, `UPDATE cold_lists SET updated_at = NOW() WHERE id = $1`, id)
	}
	if err != nil {
		return fmt.Errorf("failed to update cold list: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *ColdListRepository) UpdateStatus(ctx context.Context, id int64, status coldlist.Status) error {
	return execOne(ctx, r.db.pool, "update cold list status",
		`UPDATE cold_lists SET status = $2, updated_at = NOW() WHERE id = $1`,
		id, status,
	)
}

func (r *ColdListRepository) MarkCompleted(ctx context.Context, id int64, tasksGenerated int) error {
	return execOne(ctx, r.db.pool, "complete cold list",
		`UPDATE cold_lists SET status = $2, tasks_generated = $3, updated_at = NOW() WHERE id = $1`,
		id, coldlist.StatusCompleted, tasksGenerated,
	)
}

// UpdateClientContact writes the three contact fields of one lead together.
func (r *ColdListRepository) UpdateClientContact(ctx context.Context, id int64, position int, update coldlist.ContactUpdate) error {
	return execOne(ctx, r.db.pool, "update client contact", `
		UPDATE cold_list_clients
		SET contacted = $3, contact_date = $4, contacted_by = $5
		WHERE cold_list_id = $1 AND position = $2`,
		id, position, update.Contacted, update.ContactDate, update.ContactedBy,
	)
}

// Delete removes the list; leads go with it through ON DELETE CASCADE.
func (r *ColdListRepository) Delete(ctx context.Context, id int64) error {
	return execOne(ctx, r.db.pool, "delete cold list", `DELETE FROM cold_lists WHERE id = $1`, id)
}

// ==================== Helpers ====================

func (r *ColdListRepository) queryColdLists(ctx context.Context, query string, args ...interface{}) ([]coldlist.ColdList, error) {
	rows, err := r.db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list cold lists: %w", err)
	}
	defer rows.Close()

	lists := []coldlist.ColdList{}
	for rows.Next() {
		l, err := scanColdList(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cold list: %w", err)
		}
		lists = append(lists, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cold lists: %w", err)
	}

	return lists, nil
}

func (r *ColdListRepository) loadClients(ctx context.Context, ids []int64) (map[int64][]coldlist.Client, error) {
	query := `SELECT ` + clientColumns + `
		FROM cold_list_clients
		WHERE cold_list_id = ANY($1)
		ORDER BY cold_list_id, position`

	rows, err := r.db.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load clients: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]coldlist.Client, len(ids))
	for rows.Next() {
		var (
			listID int64
			c      coldlist.Client
		)
		if err := rows.Scan(
			&listID, &c.Position, &c.Name, &c.Phone, &c.Extra,
			&c.AssignedVendorID, &c.AssignedDate, &c.Contacted, &c.ContactDate, &c.ContactedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		out[listID] = append(out[listID], c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate clients: %w", err)
	}

	return out, nil
}

func scanColdList(row pgx.Row) (*coldlist.ColdList, error) {
	var l coldlist.ColdList
	err := row.Scan(
		&l.ID, &l.Reference, &l.Name, &l.Description, &l.ProjectID,
		&l.ClientsPerDay, &l.ClientsPerVendor, &l.SelectedVendors, &l.StartDate, &l.EndDate,
		&l.TotalClients, &l.Status, &l.TasksGenerated, &l.OwnerID, &l.AssignedUserID,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}
