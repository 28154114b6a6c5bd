package coldlist

import (
	"strings"
	"testing"
	"time"

	"coldlist-service/internal/domain/coldlist"
	"coldlist-service/internal/domain/task"
	"coldlist-service/internal/domain/vendor"
)

func TestBuildTasksScenario(t *testing.T) {
	plan, err := Distribute(scenarioParams(), 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	linked := int64(501)
	vendors := map[int64]*vendor.Vendor{
		1: {ID: 1, Name: "Ana", UserID: &linked},
		2: {ID: 2, Name: "Bruno"},
	}
	list := &coldlist.ColdList{ID: 10, Name: "Leads Q1", ProjectID: 3}

	tasks := BuildTasks(list, plan, vendors, "02/01/2006", time.UTC, 99)

	if len(tasks) != 5 {
		t.Fatalf("expected 5 tasks, got %d", len(tasks))
	}

	first := tasks[0]
	if first.Title != "Leads Q1 - Ana - 01/01/2024" {
		t.Errorf("unexpected title %q", first.Title)
	}
	if first.Description != "4 clients to contact" {
		t.Errorf("unexpected description %q", first.Description)
	}
	if first.Status != task.StatusTodo || first.Priority != task.PriorityMedium {
		t.Errorf("expected todo/medium, got %s/%s", first.Status, first.Priority)
	}
	if first.AssignedUserID == nil || *first.AssignedUserID != linked {
		t.Errorf("expected task assigned to linked user %d", linked)
	}
	if !first.DueDate.Equal(date(2024, 1, 1)) {
		t.Errorf("expected due date 2024-01-01, got %s", first.DueDate)
	}
	if first.ColdListID != 10 || first.ProjectID != 3 || first.CreatedBy != 99 {
		t.Errorf("unexpected ownership fields: %+v", first)
	}

	if tasks[1].AssignedUserID != nil {
		t.Errorf("expected vendor without login to leave the user empty")
	}

	last := tasks[4]
	if !strings.HasSuffix(last.Title, "Ana - 03/01/2024") {
		t.Errorf("unexpected last title %q", last.Title)
	}

	seen := map[string]bool{}
	for _, tk := range tasks {
		if !strings.HasPrefix(tk.Reference, "TSK-") || seen[tk.Reference] {
			t.Errorf("expected unique task references, got %q", tk.Reference)
		}
		seen[tk.Reference] = true
	}
}

func TestBuildTasksUnknownVendor(t *testing.T) {
	plan := &Plan{Buckets: []Bucket{{Date: date(2024, 2, 1), VendorID: 77, Start: 0, End: 2}}}
	tasks := BuildTasks(&coldlist.ColdList{Name: "L"}, plan, nil, "2006-01-02", time.UTC, 1)

	if len(tasks) != 1 || tasks[0].Title != "L - vendor #77 - 2024-02-01" {
		t.Errorf("unexpected tasks %+v", tasks)
	}
}
