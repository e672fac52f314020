package csvimport

import (
	"strings"

	"github.com/mbolis/agriquest/model"
)

// Report summarizes an import: every data row of the file ends up counted in
// exactly one of Success, Rejected or Existing.
type Report struct {
	Total      int              `json:"total"`
	Success    int              `json:"success"`
	Rejected   int              `json:"rejected"`
	Existing   int              `json:"existing"`
	Rejections []Rejection      `json:"rejections"`
	Created    []model.Location `json:"created"`
}

// Plan decides which parsed rows must be created. A row already known, either
// among existing or earlier in the same file, is counted as existing; the
// match is on name and community, ignoring case.
func Plan(rows []Row, rejected []Rejection, existing []model.Location) ([]model.Location, Report) {
	seen := make(map[string]bool, len(existing)+len(rows))
	for _, l := range existing {
		seen[locationKey(l.Name, l.Community)] = true
	}

	report := Report{
		Total:      len(rows) + len(rejected),
		Rejected:   len(rejected),
		Rejections: append([]Rejection{}, rejected...),
		Created:    []model.Location{},
	}
	var create []model.Location
	for _, r := range rows {
		key := locationKey(r.Name, r.Community)
		if seen[key] {
			report.Existing++
			continue
		}
		seen[key] = true
		create = append(create, r.Location())
	}
	return create, report
}

// Add records a location the backend accepted.
func (r *Report) Add(l model.Location) {
	r.Success++
	r.Created = append(r.Created, l)
}

// Reject records a row the backend refused.
func (r *Report) Reject(l model.Location, reason string) {
	r.Rejected++
	r.Rejections = append(r.Rejections, Rejection{Name: l.Name, Reason: reason})
}

func locationKey(name, community string) string {
	return strings.ToLower(strings.TrimSpace(name)) + "\x00" + strings.ToLower(strings.TrimSpace(community))
}
