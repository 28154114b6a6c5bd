// internal/service/coldlist/tasks.go
package coldlist

import (
	"fmt"
	"time"

	"coldlist-service/internal/domain/coldlist"
	"coldlist-service/internal/domain/task"
	"coldlist-service/internal/domain/vendor"

	"github.com/oklog/ulid/v2"
)

// BuildTasks turns every non-empty bucket of the plan into one task.
func BuildTasks(l *coldlist.ColdList, plan *Plan, vendors map[int64]*vendor.Vendor, layout string, loc *time.Location, createdBy int64) []task.Task {
	tasks := make([]task.Task, 0, len(plan.Buckets))

	for _, b := range plan.Buckets {
		if b.Size() == 0 {
			continue
		}

		vendorName := fmt.Sprintf("vendor #%d", b.VendorID)
		var userID *int64
		if v, ok := vendors[b.VendorID]; ok {
			vendorName = v.Name
			userID = v.UserID
		}

		tasks = append(tasks, task.Task{
			Reference:        "TSK-" + ulid.Make().String(),
			Title:            fmt.Sprintf("%s - %s - %s", l.Name, vendorName, b.Date.In(loc).Format(layout)),
			Description:      fmt.Sprintf("%d clients to contact", b.Size()),
			Status:           task.StatusTodo,
			Priority:         task.PriorityMedium,
			DueDate:          b.Date,
			ProjectID:        l.ProjectID,
			ColdListID:       l.ID,
			AssignedVendorID: b.VendorID,
			AssignedUserID:   userID,
			CreatedBy:        createdBy,
		})
	}

	return tasks
}
