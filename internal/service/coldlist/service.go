// internal/service/coldlist/service.go
package coldlist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"coldlist-service/internal/domain/coldlist"
	"coldlist-service/internal/domain/vendor"
	xerrors "coldlist-service/internal/pkg/errors"
	"coldlist-service/internal/pkg/lock"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

const previewSize = 5

type Options struct {
	Location   *time.Location
	DateLayout string
}

type ColdListService struct {
	repo    ColdListRepository
	vendors VendorDirectory
	tasks   TaskSink
	locker  lock.Locker
	loc     *time.Location
	layout  string
	now     func() time.Time
	logger  *zap.Logger
}

func NewColdListService(
	repo ColdListRepository,
	vendors VendorDirectory,
	tasks TaskSink,
	locker lock.Locker,
	opts Options,
	logger *zap.Logger,
) *ColdListService {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.DateLayout == "" {
		opts.DateLayout = "02/01/2006"
	}
	return &ColdListService{
		repo:    repo,
		vendors: vendors,
		tasks:   tasks,
		locker:  locker,
		loc:     opts.Location,
		layout:  opts.DateLayout,
		now:     time.Now,
		logger:  logger,
	}
}

// ========== Campaign Lifecycle ==========

// CreateColdList validates the campaign parameters and stores an empty list.
func (s *ColdListService) CreateColdList(ctx context.Context, ownerID int64, req *coldlist.CreateColdListRequest) (*coldlist.ColdList, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, xerrors.New(xerrors.KindInvalidInput, "name is required")
	}
	if req.ClientsPerDay < 1 || req.ClientsPerVendor < 1 {
		return nil, xerrors.New(xerrors.KindInvalidInput, "clients per day and per vendor must be positive")
	}
	if len(req.SelectedVendors) == 0 {
		return nil, xerrors.New(xerrors.KindInvalidInput, "select at least one vendor")
	}

	seen := make(map[int64]bool, len(req.SelectedVendors))
	for _, id := range req.SelectedVendors {
		if seen[id] {
			return nil, xerrors.Newf(xerrors.KindInvalidInput, "vendor %d selected twice", id)
		}
		seen[id] = true
	}

	startDay, err := ParseCampaignDate(req.StartDate, s.loc)
	if err != nil {
		return nil, err
	}
	endDay, err := ParseCampaignDate(req.EndDate, s.loc)
	if err != nil {
		return nil, err
	}

	// The end date is inclusive: the campaign runs through the whole end day.
	start := StartOfDay(startDay, s.loc)
	end := EndOfDay(endDay, s.loc)
	if DaysDiff(start, end, s.loc) <= 0 {
		return nil, xerrors.New(xerrors.KindInvalidInput, "end date must not be before start date")
	}

	found, err := s.vendors.FindByIDs(ctx, req.SelectedVendors)
	if err != nil {
		return nil, xerrors.Upstream(err, "failed to load vendors")
	}
	usable := 0
	for i := range found {
		if found[i].OwnerID == ownerID && found[i].Active && seen[found[i].ID] {
			usable++
		}
	}
	if usable != len(req.SelectedVendors) {
		return nil, xerrors.New(xerrors.KindInvalidInput, "one or more vendors were not found")
	}

	assignee := ownerID
	if req.AssignedUserID != nil {
		assignee = *req.AssignedUserID
	}

	l := &coldlist.ColdList{
		Reference:        "CL-" + ulid.Make().String(),
		Name:             name,
		Description:      strings.TrimSpace(req.Description),
		ProjectID:        req.ProjectID,
		ClientsPerDay:    req.ClientsPerDay,
		ClientsPerVendor: req.ClientsPerVendor,
		SelectedVendors:  append([]int64(nil), req.SelectedVendors...),
		StartDate:        start,
		EndDate:          end,
		TotalClients:     0,
		Status:           coldlist.StatusPending,
		OwnerID:          ownerID,
		AssignedUserID:   &assignee,
	}

	if err := s.repo.Create(ctx, l); err != nil {
		s.logger.Error("failed to create cold list", zap.Error(err))
		return nil, xerrors.Upstream(err, "failed to create cold list")
	}

	s.logger.Info("cold list created",
		zap.Int64("cold_list_id", l.ID),
		zap.String("reference", l.Reference),
		zap.Int64("owner_id", ownerID),
	)

	return l, nil
}

// ListColdLists returns the lists owned by ownerID, without leads.
func (s *ColdListService) ListColdLists(ctx context.Context, ownerID int64, filters *coldlist.ColdListFilters) ([]coldlist.ColdList, error) {
	if filters != nil && filters.Status != nil && !filters.Status.Valid() {
		return nil, xerrors.Newf(xerrors.KindInvalidInput, "unknown status %q", *filters.Status)
	}
	lists, err := s.repo.ListByOwner(ctx, ownerID, filters)
	if err != nil {
		return nil, xerrors.Upstream(err, "failed to list cold lists")
	}
	return lists, nil
}

// GetColdList returns the full list to its owner or delegate.
func (s *ColdListService) GetColdList(ctx context.Context, id, userID int64) (*coldlist.ColdList, error) {
	l, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if ResolveRole(l, userID, nil).Kind < RoleDelegate {
		return nil, xerrors.New(xerrors.KindPermissionDenied, "you cannot access this cold list")
	}
	return l, nil
}

// ImportClients replaces the leads of a list with the valid rows.
func (s *ColdListService) ImportClients(ctx context.Context, id, userID int64, rows []coldlist.ImportClientRow) (*coldlist.ImportResult, error) {
	clients := SanitizeRows(rows)
	if len(clients) == 0 {
		return nil, xerrors.New(xerrors.KindInvalidInput, "no valid clients to import (name and phone are required)")
	}

	err := s.withLock(ctx, id, func() error {
		l, err := s.findOwned(ctx, id, userID)
		if err != nil {
			return err
		}
		switch l.Status {
		case coldlist.StatusProcessing, coldlist.StatusCompleted, coldlist.StatusCancelled:
			return xerrors.Newf(xerrors.KindConflict, "cannot import into a %s cold list", l.Status)
		}

		if err := s.repo.ReplaceClients(ctx, id, clients); err != nil {
			return xerrors.Upstream(err, "failed to store clients")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("clients imported",
		zap.Int64("cold_list_id", id),
		zap.Int("valid_rows", len(clients)),
		zap.Int("dropped_rows", len(rows)-len(clients)),
	)

	return &coldlist.ImportResult{
		TotalClients: len(clients),
		Preview:      clients[:min(previewSize, len(clients))],
	}, nil
}

// SanitizeRows trims every row and drops those without a name or phone.
// Positions are assigned in the kept order.
func SanitizeRows(rows []coldlist.ImportClientRow) []coldlist.Client {
	clients := make([]coldlist.Client, 0, len(rows))
	for _, r := range rows {
		name := strings.TrimSpace(r.Name)
		phone := strings.TrimSpace(r.Phone)
		if name == "" || phone == "" {
			continue
		}
		clients = append(clients, coldlist.Client{
			Position: len(clients),
			Name:     name,
			Phone:    phone,
			Extra:    r.Extra,
		})
	}
	return clients
}

// GenerateTasks distributes the leads and emits one task per non-empty bucket.
func (s *ColdListService) GenerateTasks(ctx context.Context, id, userID int64) (*coldlist.GenerateTasksResult, error) {
	var result *coldlist.GenerateTasksResult

	err := s.withLock(ctx, id, func() error {
		l, err := s.findOwned(ctx, id, userID)
		if err != nil {
			return err
		}
		switch l.Status {
		case coldlist.StatusCompleted:
			return xerrors.New(xerrors.KindConflict, "tasks were already generated for this cold list, redistribute first")
		case coldlist.StatusProcessing, coldlist.StatusCancelled:
			return xerrors.Newf(xerrors.KindConflict, "cannot generate tasks for a %s cold list", l.Status)
		}
		if len(l.Clients) == 0 {
			return xerrors.New(xerrors.KindInvalidInput, "cold list has no clients")
		}

		plan, err := Distribute(ParamsFor(l, s.loc), len(l.Clients))
		if err != nil {
			return err
		}
		vendors, err := s.vendorMap(ctx, l.SelectedVendors)
		if err != nil {
			return err
		}

		if err := s.repo.UpdateStatus(ctx, id, coldlist.StatusProcessing); err != nil {
			return xerrors.Upstream(err, "failed to mark cold list as processing")
		}

		generated, err := s.materialize(ctx, l, plan, vendors, userID)
		if err != nil {
			s.revertToPending(ctx, id, err)
			return err
		}

		result = &coldlist.GenerateTasksResult{
			TasksGenerated: generated,
			Vendors:        len(l.SelectedVendors),
			Days:           plan.DaysDiff,
			Overflow:       plan.Overflow,
			Warnings:       plan.Warnings,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("tasks generated",
		zap.Int64("cold_list_id", id),
		zap.Int("tasks", result.TasksGenerated),
		zap.Int("overflow", result.Overflow),
	)

	return result, nil
}

func (s *ColdListService) materialize(ctx context.Context, l *coldlist.ColdList, plan *Plan, vendors map[int64]*vendor.Vendor, userID int64) (int, error) {
	if err := s.repo.SaveAssignments(ctx, l.ID, plan.Assignments, false); err != nil {
		return 0, xerrors.Upstream(err, "failed to save assignments")
	}

	tasks := BuildTasks(l, plan, vendors, s.layout, s.loc, userID)
	if len(tasks) > 0 {
		if err := s.tasks.CreateBatch(ctx, tasks); err != nil {
			return 0, xerrors.Upstream(err, "failed to create tasks")
		}
	}

	if err := s.repo.MarkCompleted(ctx, l.ID, len(tasks)); err != nil {
		return 0, xerrors.Upstream(err, "failed to mark cold list as completed")
	}
	return len(tasks), nil
}

func (s *ColdListService) revertToPending(ctx context.Context, id int64, cause error) {
	// Revert even if the request was cancelled.
	ctx = context.WithoutCancel(ctx)

	if err := s.repo.UpdateStatus(ctx, id, coldlist.StatusPending); err != nil {
		s.logger.Error("fatal inconsistency: cold list left in processing",
			zap.Int64("cold_list_id", id),
			zap.NamedError("cause", cause),
			zap.Error(err),
		)
		return
	}

	s.logger.Warn("distribution failed, cold list reverted to pending",
		zap.Int64("cold_list_id", id),
		zap.Error(cause),
	)
}

// Redistribute clears assignment and contact state and recomputes the
// assignments. No tasks are emitted and the list returns to pending.
func (s *ColdListService) Redistribute(ctx context.Context, id, userID int64) (*coldlist.RedistributeResult, error) {
	var result *coldlist.RedistributeResult

	err := s.withLock(ctx, id, func() error {
		l, err := s.findOwned(ctx, id, userID)
		if err != nil {
			return err
		}
		switch l.Status {
		case coldlist.StatusProcessing, coldlist.StatusCancelled:
			return xerrors.Newf(xerrors.KindConflict, "cannot redistribute a %s cold list", l.Status)
		}
		if len(l.Clients) == 0 {
			return xerrors.New(xerrors.KindInvalidInput, "cold list has no clients")
		}

		plan, err := Distribute(ParamsFor(l, s.loc), len(l.Clients))
		if err != nil {
			return err
		}

		if err := s.repo.SaveAssignments(ctx, id, plan.Assignments, true); err != nil {
			return xerrors.Upstream(err, "failed to save assignments")
		}

		result = &coldlist.RedistributeResult{
			TotalClients: plan.Assigned,
			Vendors:      len(l.SelectedVendors),
			Days:         plan.DaysDiff,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("cold list redistributed",
		zap.Int64("cold_list_id", id),
		zap.Int("assigned", result.TotalClients),
	)

	return result, nil
}

// CancelColdList stops a campaign. Cancelled lists reject further work.
func (s *ColdListService) CancelColdList(ctx context.Context, id, userID int64) error {
	err := s.withLock(ctx, id, func() error {
		l, err := s.findOwned(ctx, id, userID)
		if err != nil {
			return err
		}
		switch l.Status {
		case coldlist.StatusCancelled:
			return nil
		case coldlist.StatusProcessing:
			return xerrors.New(xerrors.KindConflict, "cold list is being processed")
		}
		if err := s.repo.UpdateStatus(ctx, id, coldlist.StatusCancelled); err != nil {
			return xerrors.Upstream(err, "failed to cancel cold list")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("cold list cancelled", zap.Int64("cold_list_id", id))
	return nil
}

// DeleteColdList removes a list and its leads. Emitted tasks are kept.
func (s *ColdListService) DeleteColdList(ctx context.Context, id, userID int64) error {
	err := s.withLock(ctx, id, func() error {
		l, err := s.findOwned(ctx, id, userID)
		if err != nil {
			return err
		}
		if l.Status == coldlist.StatusProcessing {
			return xerrors.New(xerrors.KindConflict, "cold list is being processed")
		}
		if err := s.repo.Delete(ctx, id); err != nil {
			return storeErr(err, "failed to delete cold list")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("cold list deleted", zap.Int64("cold_list_id", id))
	return nil
}

// ========== Contact Tracking ==========

// SetContacted marks or unmarks the lead at index as contacted by userID.
func (s *ColdListService) SetContacted(ctx context.Context, id int64, index int, contacted bool, userID int64) (*coldlist.Client, error) {
	var updated coldlist.Client

	err := s.withLock(ctx, id, func() error {
		l, err := s.find(ctx, id)
		if err != nil {
			return err
		}
		if l.Status == coldlist.StatusCancelled {
			return xerrors.New(xerrors.KindConflict, "cold list is cancelled")
		}
		if index < 0 || index >= len(l.Clients) {
			return xerrors.Newf(xerrors.KindInvalidInput, "invalid client index %d", index)
		}

		role, err := s.roleFor(ctx, l, userID)
		if err != nil {
			return err
		}
		if role.Kind == RoleNone {
			return xerrors.New(xerrors.KindPermissionDenied, "you cannot update clients of this cold list")
		}

		lead := l.Clients[index]
		if !role.CanTouch(&lead) {
			return xerrors.New(xerrors.KindPermissionDenied, "client is assigned to another vendor")
		}

		update := coldlist.NewContactUpdate(contacted, userID, s.now())
		if err := s.repo.UpdateClientContact(ctx, id, lead.Position, update); err != nil {
			return storeErr(err, "failed to update client")
		}

		update.Apply(&lead)
		updated = lead
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("client contact updated",
		zap.Int64("cold_list_id", id),
		zap.Int("client_index", index),
		zap.Bool("contacted", contacted),
		zap.Int64("identity_id", userID),
	)

	return &updated, nil
}

// ========== Helpers ==========

func (s *ColdListService) withLock(ctx context.Context, id int64, fn func() error) error {
	release, err := s.locker.Acquire(ctx, lock.ColdListKey(id))
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			return xerrors.New(xerrors.KindConflict, "cold list is busy (being redistributed), retry")
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return xerrors.Upstream(err, "failed to lock cold list")
	}
	defer release()

	return fn()
}

func (s *ColdListService) find(ctx context.Context, id int64) (*coldlist.ColdList, error) {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "cold list not found")
	}
	return l, nil
}

func (s *ColdListService) findOwned(ctx context.Context, id, userID int64) (*coldlist.ColdList, error) {
	l, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.OwnerID != userID {
		return nil, xerrors.New(xerrors.KindPermissionDenied, "only the owner can change this cold list")
	}
	return l, nil
}

// roleFor resolves the role, loading linked vendors only when needed.
func (s *ColdListService) roleFor(ctx context.Context, l *coldlist.ColdList, userID int64) (Role, error) {
	if role := ResolveRole(l, userID, nil); role.Kind != RoleNone {
		return role, nil
	}
	linked, err := s.vendors.FindByUserID(ctx, userID)
	if err != nil {
		return Role{}, xerrors.Upstream(err, "failed to load vendors")
	}
	return ResolveRole(l, userID, linked), nil
}

func (s *ColdListService) vendorMap(ctx context.Context, ids []int64) (map[int64]*vendor.Vendor, error) {
	found, err := s.vendors.FindByIDs(ctx, ids)
	if err != nil {
		return nil, xerrors.Upstream(err, "failed to load vendors")
	}
	m := make(map[int64]*vendor.Vendor, len(found))
	for i := range found {
		m[found[i].ID] = &found[i]
	}
	for _, id := range ids {
		if _, ok := m[id]; !ok {
			return nil, xerrors.Newf(xerrors.KindInvalidInput, "vendor %d no longer exists", id)
		}
	}
	return m, nil
}

// storeErr keeps classified store errors (not found) and marks the rest upstream.
func storeErr(err error, message string) error {
	if xerrors.Is(err, xerrors.ErrNotFound) {
		return fmt.Errorf("%s: %w", message, err)
	}
	return xerrors.Upstream(err, message)
}
