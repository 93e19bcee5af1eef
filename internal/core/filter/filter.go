// Package filter derives the borrower-record views shown on the list page:
// the role-scoped base set, per-status counts and the display set.
// Everything here is a pure function of its inputs.
package filter

import (
	"sort"
	"strings"

	"daterbo-console/internal/core/domain"

	"golang.org/x/text/cases"
)

// Criteria are the user-chosen list filters
type Criteria struct {
	Search   string
	Date     *domain.Day
	Status   Selection // matched against the status name
	Leasing  Selection
	User     Selection
	PIC      Selection
	Surveyor Selection
}

// Result holds the three derived views
type Result struct {
	// Base is every record passing search, date, role scope and reference filters.
	Base []domain.BorrowerRecord
	// Counts maps every known status name to its number of Base records.
	Counts map[string]int
	// Display is Base restricted to the active status.
	Display []domain.BorrowerRecord
	// DatesWithData lists the distinct input days present in Base.
	DatesWithData []domain.Day
	// Total is len(Base), the count shown on the "all" tab.
	Total int
}

// Apply runs the pipeline. Role scoping applies regardless of other criteria;
// a nil identity sees nothing.
func Apply(records []domain.BorrowerRecord, c Criteria, id *domain.Identity, statuses []domain.Status) Result {
	folder := cases.Fold()
	query := folder.String(strings.TrimSpace(c.Search))
	canViewAll := id.CanViewAll()

	base := make([]domain.BorrowerRecord, 0, len(records))
	for i := range records {
		r := &records[i]

		if query != "" &&
			!strings.Contains(folder.String(r.NIK), query) &&
			!strings.Contains(folder.String(r.Name), query) {
			continue
		}
		if c.Date != nil && (r.InputDate.IsZero() || r.InputDate.Day() != *c.Date) {
			continue
		}
		if !canViewAll && !id.Owns(r) {
			continue
		}
		if !c.Leasing.Matches(r.LeasingID()) {
			continue
		}
		if canViewAll && !c.User.Matches(r.UserID()) {
			continue
		}
		if !c.PIC.Matches(r.PICID()) || !c.Surveyor.Matches(r.SurveyorID()) {
			continue
		}

		base = append(base, *r)
	}

	display := base
	if !c.Status.IsAll() {
		display = make([]domain.BorrowerRecord, 0, len(base))
		for i := range base {
			if c.Status.Matches(base[i].StatusName()) {
				display = append(display, base[i])
			}
		}
	}

	return Result{
		Base:          base,
		Counts:        StatusCounts(base, statuses),
		Display:       display,
		DatesWithData: datesWithData(base),
		Total:         len(base),
	}
}

// ScopeToIdentity keeps the records the identity may see
func ScopeToIdentity(records []domain.BorrowerRecord, id *domain.Identity) []domain.BorrowerRecord {
	if id.CanViewAll() {
		return records
	}
	out := make([]domain.BorrowerRecord, 0, len(records))
	for i := range records {
		if id.Owns(&records[i]) {
			out = append(out, records[i])
		}
	}
	return out
}

// StatusCounts counts records per known status name. Every known status is
// present, zero included; records with an unknown status are not counted.
func StatusCounts(records []domain.BorrowerRecord, statuses []domain.Status) map[string]int {
	counts := make(map[string]int, len(statuses))
	for _, s := range statuses {
		counts[s.Name] = 0
	}
	for i := range records {
		name := records[i].StatusName()
		if _, known := counts[name]; known && records[i].Status != nil {
			counts[name]++
		}
	}
	return counts
}

func datesWithData(records []domain.BorrowerRecord) []domain.Day {
	seen := make(map[domain.Day]struct{})
	days := make([]domain.Day, 0)
	for i := range records {
		if records[i].InputDate.IsZero() {
			continue
		}
		d := records[i].InputDate.Day()
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].String() < days[j].String() })
	return days
}
