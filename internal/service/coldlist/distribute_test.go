package coldlist

import (
	"reflect"
	"testing"
	"time"
	_ "time/tzdata"

	xerrors "coldlist-service/internal/pkg/errors"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func endOfDay(t time.Time) time.Time {
	return t.AddDate(0, 0, 1).Add(-time.Nanosecond)
}

func scenarioParams() DistributionParams {
	return DistributionParams{
		StartDate:        date(2024, 1, 1),
		EndDate:          endOfDay(date(2024, 1, 3)),
		ClientsPerVendor: 10,
		ClientsPerDay:    100,
		VendorIDs:        []int64{1, 2},
	}
}

func TestDistributeScenario(t *testing.T) {
	plan, err := Distribute(scenarioParams(), 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if plan.DaysDiff != 3 {
		t.Errorf("expected 3 days, got %d", plan.DaysDiff)
	}
	if plan.PerVendorPerDay != 4 {
		t.Errorf("expected 4 per vendor per day, got %d", plan.PerVendorPerDay)
	}

	want := []Bucket{
		{Day: 0, Date: date(2024, 1, 1), VendorID: 1, Start: 0, End: 4},
		{Day: 0, Date: date(2024, 1, 1), VendorID: 2, Start: 4, End: 8},
		{Day: 1, Date: date(2024, 1, 2), VendorID: 1, Start: 8, End: 12},
		{Day: 1, Date: date(2024, 1, 2), VendorID: 2, Start: 12, End: 16},
		{Day: 2, Date: date(2024, 1, 3), VendorID: 1, Start: 16, End: 20},
	}
	if !reflect.DeepEqual(plan.Buckets, want) {
		t.Fatalf("expected buckets %+v, got %+v", want, plan.Buckets)
	}

	if plan.Assigned != 20 || plan.Overflow != 0 {
		t.Errorf("expected 20 assigned and no overflow, got %d/%d", plan.Assigned, plan.Overflow)
	}
	if len(plan.Assignments) != 20 {
		t.Fatalf("expected 20 assignments, got %d", len(plan.Assignments))
	}
	if a := plan.Assignments[3]; a.Position != 3 || a.VendorID != 1 || !a.Date.Equal(date(2024, 1, 1)) {
		t.Errorf("unexpected assignment for lead 3: %+v", a)
	}
	if a := plan.Assignments[19]; a.Position != 19 || a.VendorID != 1 || !a.Date.Equal(date(2024, 1, 3)) {
		t.Errorf("unexpected assignment for lead 19: %+v", a)
	}
}

func TestDistributeCoverageAndOverflow(t *testing.T) {
	cases := []struct {
		name     string
		leads    int
		vendors  []int64
		perVend  int
		days     int
		overflow int
	}{
		{"exact fit", 12, []int64{1, 2}, 6, 3, 0},
		{"under provisioned", 30, []int64{1, 2}, 6, 3, 18},
		{"single vendor", 7, []int64{9}, 3, 3, 4},
		{"no leads", 0, []int64{1, 2, 3}, 9, 3, 0},
		{"uneven cap", 25, []int64{1, 2, 3}, 10, 4, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := DistributionParams{
				StartDate:        date(2024, 3, 1),
				EndDate:          endOfDay(date(2024, 3, tc.days)),
				ClientsPerVendor: tc.perVend,
				VendorIDs:        tc.vendors,
			}
			plan, err := Distribute(p, tc.leads)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if plan.Overflow != tc.overflow {
				t.Errorf("expected overflow %d, got %d", tc.overflow, plan.Overflow)
			}

			// Every lead before the overflow tail is assigned exactly once, in order.
			if len(plan.Assignments) != tc.leads-tc.overflow {
				t.Fatalf("expected %d assignments, got %d", tc.leads-tc.overflow, len(plan.Assignments))
			}
			for i, a := range plan.Assignments {
				if a.Position != i {
					t.Fatalf("expected position %d, got %d", i, a.Position)
				}
			}

			capacity := plan.DaysDiff * len(tc.vendors) * plan.PerVendorPerDay
			if expected := max(tc.leads-capacity, 0); plan.Overflow != expected {
				t.Errorf("expected overflow to equal leads minus capacity %d, got %d", expected, plan.Overflow)
			}
		})
	}
}

func TestDistributeCapPerBucket(t *testing.T) {
	p := DistributionParams{
		StartDate:        date(2024, 5, 1),
		EndDate:          endOfDay(date(2024, 5, 4)),
		ClientsPerVendor: 7,
		VendorIDs:        []int64{3, 1, 2},
	}
	leads := 23

	plan, err := Distribute(p, leads)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	remaining := leads
	for _, b := range plan.Buckets {
		want := min(plan.PerVendorPerDay, remaining)
		if b.Size() != want {
			t.Errorf("bucket day %d vendor %d: expected %d leads, got %d", b.Day, b.VendorID, want, b.Size())
		}
		if b.Size() > plan.PerVendorPerDay {
			t.Errorf("bucket exceeds cap: %d > %d", b.Size(), plan.PerVendorPerDay)
		}
		remaining -= b.Size()
	}

	// Vendors are visited in their configured order.
	if plan.Buckets[0].VendorID != 3 || plan.Buckets[1].VendorID != 1 {
		t.Errorf("expected vendor order 3, 1, got %d, %d", plan.Buckets[0].VendorID, plan.Buckets[1].VendorID)
	}
}

func TestDistributeDeterministic(t *testing.T) {
	first, err := Distribute(scenarioParams(), 17)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Distribute(scenarioParams(), 17)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("expected identical plans, got %+v and %+v", first, second)
	}
}

func TestDistributeClientsPerDayIsOnlyAHint(t *testing.T) {
	loose := scenarioParams()
	tight := scenarioParams()
	tight.ClientsPerDay = 5

	a, err := Distribute(loose, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Distribute(tight, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(a.Assignments, b.Assignments) {
		t.Errorf("expected clients_per_day to leave assignments unchanged")
	}
	if len(a.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", a.Warnings)
	}
	// Days 1 and 2 assign 8 leads each, day 3 assigns 4.
	if len(b.Warnings) != 2 {
		t.Errorf("expected 2 warnings, got %v", b.Warnings)
	}
}

func TestDistributeInvalid(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(p *DistributionParams)
	}{
		{"end before start", func(p *DistributionParams) { p.EndDate = date(2023, 12, 31) }},
		{"earlier the same day", func(p *DistributionParams) { p.EndDate = p.StartDate.Add(-time.Minute) }},
		{"no vendors", func(p *DistributionParams) { p.VendorIDs = nil }},
		{"zero per vendor", func(p *DistributionParams) { p.ClientsPerVendor = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := scenarioParams()
			tc.mutate(&p)
			_, err := Distribute(p, 10)
			if xerrors.KindOf(err) != xerrors.KindInvalidInput {
				t.Errorf("expected invalid_input, got %v", err)
			}
		})
	}
}

func TestDaysDiffCountsCalendarDays(t *testing.T) {
	start := date(2024, 1, 1)
	cases := []struct {
		end  time.Time
		want int
	}{
		{date(2024, 1, 3), 3},
		{endOfDay(date(2024, 1, 3)), 3},
		{start.Add(time.Hour), 1},
		{start, 1},
		{date(2023, 12, 31), 0},
	}
	for _, tc := range cases {
		if got := DaysDiff(start, tc.end, time.UTC); got != tc.want {
			t.Errorf("DaysDiff(%s): expected %d, got %d", tc.end, tc.want, got)
		}
	}
}

func berlin(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatalf("failed to load zone: %v", err)
	}
	return loc
}

func TestDistributeAcrossDSTChange(t *testing.T) {
	loc := berlin(t)

	// October 2024 has 31 days and Berlin leaves summer time on the 27th.
	// Stored bounds come back from the database in UTC.
	p := DistributionParams{
		StartDate:        StartOfDay(time.Date(2024, 10, 1, 12, 0, 0, 0, loc), loc).UTC(),
		EndDate:          EndOfDay(time.Date(2024, 10, 31, 12, 0, 0, 0, loc), loc).UTC(),
		ClientsPerVendor: 31,
		ClientsPerDay:    100,
		VendorIDs:        []int64{1},
		Location:         loc,
	}

	if got := DaysDiff(p.StartDate, p.EndDate, loc); got != 31 {
		t.Fatalf("expected 31 days, got %d", got)
	}

	plan, err := Distribute(p, 31)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.PerVendorPerDay != 1 {
		t.Errorf("expected 1 per vendor per day, got %d", plan.PerVendorPerDay)
	}
	if len(plan.Buckets) != 31 {
		t.Fatalf("expected 31 buckets, got %d", len(plan.Buckets))
	}

	seen := make(map[string]bool)
	for i, b := range plan.Buckets {
		local := b.Date.In(loc)
		if local.Hour() != 0 || local.Minute() != 0 {
			t.Errorf("bucket %d: expected local midnight, got %s", i, local)
		}
		if local.Month() != time.October || local.Day() != i+1 {
			t.Errorf("bucket %d: expected October %d, got %s", i, i+1, local.Format(dayLayout))
		}
		seen[local.Format(dayLayout)] = true
	}
	if len(seen) != 31 {
		t.Errorf("expected 31 distinct days, got %d", len(seen))
	}
}
