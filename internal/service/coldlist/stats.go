// internal/service/coldlist/stats.go
package coldlist

import (
	"context"
	"sort"
	"time"

	"coldlist-service/internal/domain/coldlist"
	xerrors "coldlist-service/internal/pkg/errors"
)

// Percentage is part/total as a whole percent, rounded half up. A zero total gives 0.
func Percentage(part, total int) int {
	if total <= 0 {
		return 0
	}
	return (part*200 + total) / (total * 2)
}

func newContactStats(total, contacted int) coldlist.ContactStats {
	return coldlist.ContactStats{
		Total:      total,
		Contacted:  contacted,
		Percentage: Percentage(contacted, total),
	}
}

// onDay reports whether the lead is assigned to the calendar day of target.
func (s *ColdListService) onDay(c *coldlist.Client, target time.Time) bool {
	return c.AssignedDate != nil && SameDay(*c.AssignedDate, target, s.loc)
}

// GetVendorStats reports contact progress per vendor over every list the user
// owns (all selected vendors) or works in (the user's own vendors). A nil day
// counts every assigned lead.
func (s *ColdListService) GetVendorStats(ctx context.Context, userID int64, day *time.Time) (*coldlist.VendorStatsReport, error) {
	linked, err := s.vendors.FindByUserID(ctx, userID)
	if err != nil {
		return nil, xerrors.Upstream(err, "failed to load vendors")
	}
	linkedIDs := make([]int64, 0, len(linked))
	own := make(map[int64]bool, len(linked))
	for i := range linked {
		linkedIDs = append(linkedIDs, linked[i].ID)
		own[linked[i].ID] = true
	}

	lists, err := s.repo.ListForReporting(ctx, userID, linkedIDs)
	if err != nil {
		return nil, xerrors.Upstream(err, "failed to load cold lists")
	}

	type acc struct {
		total, contacted int
		lists            []coldlist.VendorListStats
	}
	perVendor := make(map[int64]*acc)
	var order []int64

	for li := range lists {
		l := &lists[li]

		var scope []int64
		for _, vid := range l.SelectedVendors {
			if l.OwnerID == userID || own[vid] {
				scope = append(scope, vid)
			}
		}

		counts := make(map[int64][2]int, len(scope))
		for ci := range l.Clients {
			c := &l.Clients[ci]
			if c.AssignedVendorID == nil {
				continue
			}
			if day != nil && !s.onDay(c, *day) {
				continue
			}
			n := counts[*c.AssignedVendorID]
			n[0]++
			if c.Contacted {
				n[1]++
			}
			counts[*c.AssignedVendorID] = n
		}

		for _, vid := range scope {
			a, ok := perVendor[vid]
			if !ok {
				a = &acc{}
				perVendor[vid] = a
				order = append(order, vid)
			}
			n := counts[vid]
			a.total += n[0]
			a.contacted += n[1]
			a.lists = append(a.lists, coldlist.VendorListStats{
				ColdListID:   l.ID,
				ColdListName: l.Name,
				ContactStats: newContactStats(n[0], n[1]),
			})
		}
	}

	names, err := s.vendorNames(ctx, order)
	if err != nil {
		return nil, err
	}

	report := &coldlist.VendorStatsReport{Vendors: make([]coldlist.VendorStats, 0, len(order))}
	if day != nil {
		report.Date = day.In(s.loc).Format(dayLayout)
	}

	for _, vid := range order {
		a := perVendor[vid]
		report.Vendors = append(report.Vendors, coldlist.VendorStats{
			VendorID:     vid,
			VendorName:   names[vid],
			ColdLists:    a.lists,
			ContactStats: newContactStats(a.total, a.contacted),
		})
		report.Summary.TotalClients += a.total
		report.Summary.TotalContacted += a.contacted
	}

	sort.SliceStable(report.Vendors, func(i, j int) bool {
		return report.Vendors[i].Total > report.Vendors[j].Total
	})

	report.Summary.TotalVendors = len(report.Vendors)
	report.Summary.OverallPercentage = Percentage(report.Summary.TotalContacted, report.Summary.TotalClients)

	return report, nil
}

// GetDailyContacts lists the leads of one list assigned to day. Owners and
// delegates see every lead plus a per vendor breakdown; vendors see their own.
func (s *ColdListService) GetDailyContacts(ctx context.Context, id int64, day time.Time, userID int64) (*coldlist.DailyContacts, error) {
	l, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	role, err := s.roleFor(ctx, l, userID)
	if err != nil {
		return nil, err
	}
	if role.Kind == RoleNone {
		return nil, xerrors.New(xerrors.KindPermissionDenied, "you cannot access this cold list")
	}

	out := &coldlist.DailyContacts{
		ColdListID:   l.ID,
		ColdListName: l.Name,
		Date:         day.In(s.loc).Format(dayLayout),
		Clients:      []coldlist.Client{},
	}

	perVendor := make(map[int64][2]int)
	contacted := 0
	for ci := range l.Clients {
		c := &l.Clients[ci]
		if c.AssignedVendorID == nil || !s.onDay(c, day) || !role.CanTouch(c) {
			continue
		}
		out.Clients = append(out.Clients, *c)
		n := perVendor[*c.AssignedVendorID]
		n[0]++
		if c.Contacted {
			contacted++
			n[1]++
		}
		perVendor[*c.AssignedVendorID] = n
	}
	out.Stats.ContactStats = newContactStats(len(out.Clients), contacted)

	if role.CanSeeAll() {
		names, err := s.vendorNames(ctx, l.SelectedVendors)
		if err != nil {
			return nil, err
		}
		out.Stats.VendorStats = make([]coldlist.DailyVendorStat, 0, len(l.SelectedVendors))
		for _, vid := range l.SelectedVendors {
			n := perVendor[vid]
			out.Stats.VendorStats = append(out.Stats.VendorStats, coldlist.DailyVendorStat{
				VendorID:     vid,
				VendorName:   names[vid],
				ContactStats: newContactStats(n[0], n[1]),
			})
		}
	}

	return out, nil
}

// GetAssignedDailySummary collects, for every list where the user works as a
// vendor, the leads of the user's vendor on day. Lists with nothing that day
// are left out.
func (s *ColdListService) GetAssignedDailySummary(ctx context.Context, userID int64, day time.Time) (*coldlist.AssignedDailySummary, error) {
	linked, err := s.vendors.FindByUserID(ctx, userID)
	if err != nil {
		return nil, xerrors.Upstream(err, "failed to load vendors")
	}

	out := &coldlist.AssignedDailySummary{
		Date:      day.In(s.loc).Format(dayLayout),
		ColdLists: []coldlist.AssignedListSummary{},
	}
	if len(linked) == 0 {
		return out, nil
	}

	linkedIDs := make([]int64, 0, len(linked))
	for i := range linked {
		linkedIDs = append(linkedIDs, linked[i].ID)
	}

	// Owner 0 matches no list, so only vendor membership counts here.
	lists, err := s.repo.ListForReporting(ctx, 0, linkedIDs)
	if err != nil {
		return nil, xerrors.Upstream(err, "failed to load cold lists")
	}

	total, contacted := 0, 0
	for li := range lists {
		l := &lists[li]
		for _, v := range linked {
			if !l.SelectsVendor(v.ID) {
				continue
			}

			summary := coldlist.AssignedListSummary{
				ColdListID:   l.ID,
				ColdListName: l.Name,
				VendorID:     v.ID,
				Clients:      []coldlist.Client{},
			}
			done := 0
			for ci := range l.Clients {
				c := &l.Clients[ci]
				if c.AssignedVendorID == nil || *c.AssignedVendorID != v.ID || !s.onDay(c, day) {
					continue
				}
				summary.Clients = append(summary.Clients, *c)
				if c.Contacted {
					done++
				}
			}
			if len(summary.Clients) == 0 {
				continue
			}

			summary.ContactStats = newContactStats(len(summary.Clients), done)
			out.ColdLists = append(out.ColdLists, summary)
			total += len(summary.Clients)
			contacted += done
		}
	}
	out.Stats = newContactStats(total, contacted)

	return out, nil
}

func (s *ColdListService) vendorNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	names := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	found, err := s.vendors.FindByIDs(ctx, ids)
	if err != nil {
		return nil, xerrors.Upstream(err, "failed to load vendors")
	}
	for i := range found {
		names[found[i].ID] = found[i].Name
	}
	return names, nil
}

// ParseDay parses a YYYY-MM-DD value in the service timezone; empty means today.
func (s *ColdListService) ParseDay(v string) (time.Time, error) {
	return ParseDay(v, s.now(), s.loc)
}
