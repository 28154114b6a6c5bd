// internal/service/coldlist/ports.go
package coldlist

import (
	"context"

	"coldlist-service/internal/domain/coldlist"
	"coldlist-service/internal/domain/task"
	"coldlist-service/internal/domain/vendor"
)

// ColdListRepository is the lead store. Implementations return
// xerrors.ErrNotFound for unknown ids.
type ColdListRepository interface {
	Create(ctx context.Context, l *coldlist.ColdList) error
	// FindByID returns the list with its leads ordered by position.
	FindByID(ctx context.Context, id int64) (*coldlist.ColdList, error)
	// ListByOwner returns lists without leads.
	ListByOwner(ctx context.Context, ownerID int64, filters *coldlist.ColdListFilters) ([]coldlist.ColdList, error)
	// ListForReporting returns non-cancelled lists, with leads, owned by ownerID
	// or selecting any of vendorIDs.
	ListForReporting(ctx context.Context, ownerID int64, vendorIDs []int64) ([]coldlist.ColdList, error)
	ReplaceClients(ctx context.Context, id int64, clients []coldlist.Client) error
	// SaveAssignments sets the assignment of every lead: leads missing from
	// assignments are left unassigned. redistribute also clears contact state and
	// returns the list to pending with no tasks, in the same write.
	SaveAssignments(ctx context.Context, id int64, assignments []coldlist.Assignment, redistribute bool) error
	UpdateStatus(ctx context.Context, id int64, status coldlist.Status) error
	MarkCompleted(ctx context.Context, id int64, tasksGenerated int) error
	UpdateClientContact(ctx context.Context, id int64, position int, update coldlist.ContactUpdate) error
	Delete(ctx context.Context, id int64) error
}

// VendorDirectory resolves vendors for permission checks and task titles.
type VendorDirectory interface {
	FindByIDs(ctx context.Context, ids []int64) ([]vendor.Vendor, error)
	FindByUserID(ctx context.Context, userID int64) ([]vendor.Vendor, error)
}

// TaskSink receives the tasks of one distribution pass in a single batch.
type TaskSink interface {
	CreateBatch(ctx context.Context, tasks []task.Task) error
}
