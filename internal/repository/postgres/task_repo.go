// internal/repository/postgres/task_repo.go
package postgres

import (
	"context"
	"fmt"

	"coldlist-service/internal/domain/task"

	"github.com/jackc/pgx/v5"
)

type TaskRepository struct {
	db *DB
}

func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// CreateBatch inserts all tasks in one transaction; either every task is
// stored or none is.
func (r *TaskRepository) CreateBatch(ctx context.Context, tasks []task.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO tasks (
			reference, title, description, status, priority, due_date,
			project_id, cold_list_id, assigned_vendor_id, assigned_user_id, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at
	`

	batch := &pgx.Batch{}
	for i := range tasks {
		t := &tasks[i]
		batch.Queue(query,
			t.Reference, t.Title, t.Description, t.Status, t.Priority, t.DueDate,
			t.ProjectID, t.ColdListID, t.AssignedVendorID, t.AssignedUserID, t.CreatedBy,
		).QueryRow(func(row pgx.Row) error {
			return row.Scan(&t.ID, &t.CreatedAt)
		})
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to create tasks: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListByColdList returns the tasks emitted for a cold list, oldest first.
func (r *TaskRepository) ListByColdList(ctx context.Context, coldListID int64) ([]task.Task, error) {
	query := `
		SELECT id, reference, title, description, status, priority, due_date,
		       project_id, cold_list_id, assigned_vendor_id, assigned_user_id, created_by, created_at
		FROM tasks
		WHERE cold_list_id = $1
		ORDER BY id
	`

	rows, err := r.db.pool.Query(ctx, query, coldListID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []task.Task{}
	for rows.Next() {
		var t task.Task
		if err := rows.Scan(
			&t.ID, &t.Reference, &t.Title, &t.Description, &t.Status, &t.Priority, &t.DueDate,
			&t.ProjectID, &t.ColdListID, &t.AssignedVendorID, &t.AssignedUserID, &t.CreatedBy, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}

	return tasks, rows.Err()
}
