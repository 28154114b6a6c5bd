// internal/repository/memory/store.go
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"coldlist-service/internal/domain/coldlist"
	"coldlist-service/internal/domain/task"
	"coldlist-service/internal/domain/vendor"
	xerrors "coldlist-service/internal/pkg/errors"
)

// Store keeps cold lists, vendors and tasks in process memory. It backs
// STORAGE_DRIVER=memory and the service tests. Values handed out are copies.
type Store struct {
	mu        sync.RWMutex
	coldLists map[int64]*coldlist.ColdList
	vendors   map[int64]*vendor.Vendor
	tasks     []task.Task
	nextID    int64
	now       func() time.Time
}

func NewStore() *Store {
	return &Store{
		coldLists: make(map[int64]*coldlist.ColdList),
		vendors:   make(map[int64]*vendor.Vendor),
		now:       time.Now,
	}
}

// ColdLists returns the lead store view.
func (s *Store) ColdLists() *ColdListStore { return &ColdListStore{s: s} }

// Vendors returns the vendor view.
func (s *Store) Vendors() *VendorStore { return &VendorStore{s: s} }

// Tasks returns the task sink view.
func (s *Store) Tasks() *TaskStore { return &TaskStore{s: s} }

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// ==================== Cold lists ====================

type ColdListStore struct {
	s *Store
}

func (r *ColdListStore) Create(ctx context.Context, l *coldlist.ColdList) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	l.ID = r.s.id()
	l.CreatedAt = now
	l.UpdatedAt = now
	r.s.coldLists[l.ID] = cloneColdList(l, true)
	return nil
}

func (r *ColdListStore) FindByID(ctx context.Context, id int64) (*coldlist.ColdList, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	l, ok := r.s.coldLists[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return cloneColdList(l, true), nil
}

func (r *ColdListStore) ListByOwner(ctx context.Context, ownerID int64, filters *coldlist.ColdListFilters) ([]coldlist.ColdList, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []coldlist.ColdList{}
	for _, l := range r.s.coldLists {
		if l.OwnerID != ownerID {
			continue
		}
		if filters != nil {
			if filters.ProjectID != nil && l.ProjectID != *filters.ProjectID {
				continue
			}
			if filters.Status != nil && l.Status != *filters.Status {
				continue
			}
		}
		out = append(out, *cloneColdList(l, false))
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *ColdListStore) ListForReporting(ctx context.Context, ownerID int64, vendorIDs []int64) ([]coldlist.ColdList, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []coldlist.ColdList{}
	for _, l := range r.s.coldLists {
		if l.Status == coldlist.StatusCancelled {
			continue
		}
		match := l.OwnerID == ownerID
		for _, vid := range vendorIDs {
			if match {
				break
			}
			match = l.SelectsVendor(vid)
		}
		if match {
			out = append(out, *cloneColdList(l, true))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *ColdListStore) ReplaceClients(ctx context.Context, id int64, clients []coldlist.Client) error {
	return r.update(id, func(l *coldlist.ColdList) error {
		l.Clients = make([]coldlist.Client, len(clients))
		for i := range clients {
			l.Clients[i] = cloneClient(clients[i])
			l.Clients[i].Position = i
		}
		l.TotalClients = len(clients)
		return nil
	})
}

func (r *ColdListStore) SaveAssignments(ctx context.Context, id int64, assignments []coldlist.Assignment, redistribute bool) error {
	return r.update(id, func(l *coldlist.ColdList) error {
		for _, a := range assignments {
			if a.Position < 0 || a.Position >= len(l.Clients) {
				return xerrors.Newf(xerrors.KindInvalidInput, "assignment for unknown position %d", a.Position)
			}
		}
		for i := range l.Clients {
			c := &l.Clients[i]
			if redistribute {
				c.ClearDistribution()
			}
			c.AssignedVendorID = nil
			c.AssignedDate = nil
		}
		for _, a := range assignments {
			vid, d := a.VendorID, a.Date
			l.Clients[a.Position].AssignedVendorID = &vid
			l.Clients[a.Position].AssignedDate = &d
		}
		if redistribute {
			l.Status = coldlist.StatusPending
			l.TasksGenerated = 0
		}
		return nil
	})
}

func (r *ColdListStore) UpdateStatus(ctx context.Context, id int64, status coldlist.Status) error {
	return r.update(id, func(l *coldlist.ColdList) error {
		l.Status = status
		return nil
	})
}

func (r *ColdListStore) MarkCompleted(ctx context.Context, id int64, tasksGenerated int) error {
	return r.update(id, func(l *coldlist.ColdList) error {
		l.Status = coldlist.StatusCompleted
		l.TasksGenerated = tasksGenerated
		return nil
	})
}

func (r *ColdListStore) UpdateClientContact(ctx context.Context, id int64, position int, update coldlist.ContactUpdate) error {
	return r.update(id, func(l *coldlist.ColdList) error {
		if position < 0 || position >= len(l.Clients) {
			return xerrors.ErrNotFound
		}
		update.Apply(&l.Clients[position])
		return nil
	})
}

func (r *ColdListStore) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.coldLists[id]; !ok {
		return xerrors.ErrNotFound
	}
	delete(r.s.coldLists, id)
	return nil
}

// update applies fn to a working copy and stores it only when fn succeeds.
func (r *ColdListStore) update(id int64, fn func(l *coldlist.ColdList) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.coldLists[id]
	if !ok {
		return xerrors.ErrNotFound
	}
	working := cloneColdList(current, true)
	if err := fn(working); err != nil {
		return err
	}
	working.UpdatedAt = r.s.now()
	r.s.coldLists[id] = working
	return nil
}

// ==================== Vendors ====================

type VendorStore struct {
	s *Store
}

func (r *VendorStore) Create(ctx context.Context, v *vendor.Vendor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	v.ID = r.s.id()
	v.CreatedAt = now
	v.UpdatedAt = now
	cp := *v
	r.s.vendors[v.ID] = &cp
	return nil
}

func (r *VendorStore) FindByID(ctx context.Context, id int64) (*vendor.Vendor, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	v, ok := r.s.vendors[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *VendorStore) FindByIDs(ctx context.Context, ids []int64) ([]vendor.Vendor, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]vendor.Vendor, 0, len(ids))
	for _, id := range ids {
		if v, ok := r.s.vendors[id]; ok {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *VendorStore) FindByUserID(ctx context.Context, userID int64) ([]vendor.Vendor, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []vendor.Vendor{}
	for _, v := range r.s.vendors {
		if v.LinkedTo(userID) {
			out = append(out, *v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *VendorStore) ListByOwner(ctx context.Context, ownerID int64, filters *vendor.VendorListFilters) ([]vendor.Vendor, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []vendor.Vendor{}
	for _, v := range r.s.vendors {
		if v.OwnerID != ownerID {
			continue
		}
		if filters != nil && filters.Active != nil && v.Active != *filters.Active {
			continue
		}
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *VendorStore) Update(ctx context.Context, v *vendor.Vendor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.vendors[v.ID]; !ok {
		return xerrors.ErrNotFound
	}
	v.UpdatedAt = r.s.now()
	cp := *v
	r.s.vendors[v.ID] = &cp
	return nil
}

func (r *VendorStore) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.vendors[id]; !ok {
		return xerrors.ErrNotFound
	}
	delete(r.s.vendors, id)
	return nil
}

func (r *VendorStore) CountOpenColdLists(ctx context.Context, vendorID int64) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, l := range r.s.coldLists {
		if l.Status != coldlist.StatusCancelled && l.SelectsVendor(vendorID) {
			n++
		}
	}
	return n, nil
}

// ==================== Tasks ====================

type TaskStore struct {
	s *Store
}

func (r *TaskStore) CreateBatch(ctx context.Context, tasks []task.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	for i := range tasks {
		tasks[i].ID = r.s.id()
		tasks[i].CreatedAt = now
	}
	r.s.tasks = append(r.s.tasks, tasks...)
	return nil
}

// ListByColdList returns the tasks emitted for a cold list.
func (r *TaskStore) ListByColdList(ctx context.Context, coldListID int64) ([]task.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []task.Task{}
	for _, t := range r.s.tasks {
		if t.ColdListID == coldListID {
			out = append(out, t)
		}
	}
	return out, nil
}

// ==================== Helpers ====================

func cloneColdList(l *coldlist.ColdList, withClients bool) *coldlist.ColdList {
	cp := *l
	cp.SelectedVendors = append([]int64(nil), l.SelectedVendors...)
	if l.AssignedUserID != nil {
		v := *l.AssignedUserID
		cp.AssignedUserID = &v
	}
	cp.Clients = nil
	if withClients && l.Clients != nil {
		cp.Clients = make([]coldlist.Client, len(l.Clients))
		for i := range l.Clients {
			cp.Clients[i] = cloneClient(l.Clients[i])
		}
	}
	return &cp
}

func cloneClient(c coldlist.Client) coldlist.Client {
	if c.AssignedVendorID != nil {
		v := *c.AssignedVendorID
		c.AssignedVendorID = &v
	}
	if c.AssignedDate != nil {
		v := *c.AssignedDate
		c.AssignedDate = &v
	}
	if c.ContactDate != nil {
		v := *c.ContactDate
		c.ContactDate = &v
	}
	if c.ContactedBy != nil {
		v := *c.ContactedBy
		c.ContactedBy = &v
	}
	if c.Extra != nil {
		extra := make(map[string]string, len(c.Extra))
		for k, v := range c.Extra {
			extra[k] = v
		}
		c.Extra = extra
	}
	return c
}

func sortNewestFirst(lists []coldlist.ColdList) {
	sort.Slice(lists, func(i, j int) bool { return lists[i].ID > lists[j].ID })
}
