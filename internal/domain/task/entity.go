// internal/domain/task/entity.go
package task

import "time"

type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Task is a unit of work on the task board, one per (day, vendor) bucket.
type Task struct {
	ID          int64    `json:"id" db:"id"`
	Reference   string   `json:"reference" db:"reference"`
	Title       string   `json:"title" db:"title"`
	Description string   `json:"description" db:"description"`
	Status      Status   `json:"status" db:"status"`
	Priority    Priority `json:"priority" db:"priority"`

	DueDate    time.Time `json:"due_date" db:"due_date"`
	ProjectID  int64     `json:"project_id" db:"project_id"`
	ColdListID int64     `json:"cold_list_id" db:"cold_list_id"`

	AssignedVendorID int64  `json:"assigned_vendor_id" db:"assigned_vendor_id"`
	AssignedUserID   *int64 `json:"assigned_user_id,omitempty" db:"assigned_user_id"`
	CreatedBy        int64  `json:"created_by" db:"created_by"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
