// internal/service/coldlist/distribute.go
package coldlist

import (
	"fmt"
	"time"

	"coldlist-service/internal/domain/coldlist"
	xerrors "coldlist-service/internal/pkg/errors"
)

// DistributionParams are the campaign inputs the engine reads. Days are
// calendar days in Location (UTC when nil).
type DistributionParams struct {
	StartDate        time.Time
	EndDate          time.Time
	ClientsPerVendor int
	ClientsPerDay    int
	VendorIDs        []int64
	Location         *time.Location
}

// ParamsFor extracts the distribution parameters of a cold list.
func ParamsFor(l *coldlist.ColdList, loc *time.Location) DistributionParams {
	return DistributionParams{
		StartDate:        l.StartDate,
		EndDate:          l.EndDate,
		ClientsPerVendor: l.ClientsPerVendor,
		ClientsPerDay:    l.ClientsPerDay,
		VendorIDs:        l.SelectedVendors,
		Location:         loc,
	}
}

// Bucket is the contiguous lead range [Start, End) given to one vendor on one day.
type Bucket struct {
	Day      int
	Date     time.Time
	VendorID int64
	Start    int
	End      int
}

func (b Bucket) Size() int {
	return b.End - b.Start
}

// Plan is the outcome of a distribution pass. Buckets only holds non-empty buckets,
// in day-major, vendor-minor order.
type Plan struct {
	DaysDiff        int
	PerVendorPerDay int
	Buckets         []Bucket
	Assignments     []coldlist.Assignment
	Assigned        int
	Overflow        int
	Warnings        []string
}

// DaysDiff is the number of calendar days in loc from start's day through
// end's day, both inclusive. It is zero or negative when end's day is before
// start's.
func DaysDiff(start, end time.Time, loc *time.Location) int {
	sy, sm, sd := start.In(loc).Date()
	ey, em, ed := end.In(loc).Date()
	// Midnights in UTC are exactly 24h apart, whatever DST does in loc.
	from := time.Date(sy, sm, sd, 0, 0, 0, 0, time.UTC)
	to := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from)/(24*time.Hour)) + 1
}

// Distribute assigns leadCount leads, in stored order, to (day, vendor) buckets.
// It never looks at prior assignment state, so the same inputs always give the
// same plan.
func Distribute(p DistributionParams, leadCount int) (*Plan, error) {
	if len(p.VendorIDs) == 0 {
		return nil, xerrors.New(xerrors.KindInvalidInput, "at least one vendor is required")
	}
	if p.ClientsPerVendor < 1 {
		return nil, xerrors.New(xerrors.KindInvalidInput, "clients per vendor must be positive")
	}

	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	daysDiff := DaysDiff(p.StartDate, p.EndDate, loc)
	if daysDiff <= 0 || p.EndDate.Before(p.StartDate) {
		return nil, xerrors.New(xerrors.KindInvalidInput, "end date must not be before start date")
	}
	first := StartOfDay(p.StartDate, loc)
	if leadCount < 0 {
		leadCount = 0
	}

	plan := &Plan{
		DaysDiff:        daysDiff,
		PerVendorPerDay: (p.ClientsPerVendor + daysDiff - 1) / daysDiff,
	}

	cursor := 0
	for d := 0; d < daysDiff && cursor < leadCount; d++ {
		date := first.AddDate(0, 0, d)
		dayTotal := 0

		for _, vendorID := range p.VendorIDs {
			take := min(plan.PerVendorPerDay, leadCount-cursor)
			if take > 0 {
				plan.Buckets = append(plan.Buckets, Bucket{
					Day:      d,
					Date:     date,
					VendorID: vendorID,
					Start:    cursor,
					End:      cursor + take,
				})
				for pos := cursor; pos < cursor+take; pos++ {
					plan.Assignments = append(plan.Assignments, coldlist.Assignment{
						Position: pos,
						VendorID: vendorID,
						Date:     date,
					})
				}
				cursor += take
				dayTotal += take
			}
			if cursor >= leadCount {
				break
			}
		}

		// clients_per_day is advisory only.
		if p.ClientsPerDay > 0 && dayTotal > p.ClientsPerDay {
			plan.Warnings = append(plan.Warnings, fmt.Sprintf(
				"%s assigns %d clients, above clients_per_day %d",
				date.Format(dayLayout), dayTotal, p.ClientsPerDay,
			))
		}
	}

	plan.Assigned = cursor
	plan.Overflow = leadCount - cursor
	if plan.Overflow > 0 {
		plan.Warnings = append(plan.Warnings, fmt.Sprintf(
			"%d clients left unassigned: %d days x %d vendors x %d per vendor per day is not enough",
			plan.Overflow, daysDiff, len(p.VendorIDs), plan.PerVendorPerDay,
		))
	}

	return plan, nil
}
