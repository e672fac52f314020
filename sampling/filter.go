// Package sampling holds the in-memory bookkeeping of the sample and quota
// panels: facet filtering of farms and optimistic allocation boards.
package sampling

import (
	"net/url"
	"strings"

	"github.com/mbolis/agriquest/model"
)

// FarmFilter selects farms by facet. Empty facets are inactive; a farm is
// kept when every active facet matches.
type FarmFilter struct {
	Province     string `json:"province,omitempty"`
	FarmType     string `json:"farmType,omitempty"`
	EconomicSize string `json:"economicSize,omitempty"`
	SearchTerm   string `json:"search,omitempty"`
}

// FilterFromQuery reads the facets from request query parameters.
func FilterFromQuery(q url.Values) FarmFilter {
	return FarmFilter{
		Province:     strings.TrimSpace(q.Get("province")),
		FarmType:     strings.TrimSpace(q.Get("farmType")),
		EconomicSize: strings.TrimSpace(q.Get("economicSize")),
		SearchTerm:   strings.TrimSpace(q.Get("search")),
	}
}

func (f FarmFilter) IsEmpty() bool {
	return f == FarmFilter{}
}

func (f FarmFilter) Match(farm model.Farm) bool {
	if f.Province != "" && !strings.EqualFold(f.Province, farm.Province) {
		return false
	}
	if f.FarmType != "" && !strings.EqualFold(f.FarmType, farm.FarmType) {
		return false
	}
	if f.EconomicSize != "" && !strings.EqualFold(f.EconomicSize, farm.EconomicSize) {
		return false
	}
	if f.SearchTerm != "" {
		term := strings.ToLower(f.SearchTerm)
		found := false
		for _, field := range []string{farm.Name, farm.Owner, farm.Community, farm.Code} {
			if strings.Contains(strings.ToLower(field), term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Apply returns the matching farms in their original order. An empty filter
// returns farms unchanged.
func (f FarmFilter) Apply(farms []model.Farm) []model.Farm {
	if f.IsEmpty() {
		return farms
	}
	out := make([]model.Farm, 0, len(farms))
	for _, farm := range farms {
		if f.Match(farm) {
			out = append(out, farm)
		}
	}
	return out
}

// Facets lists the distinct values present in farms, for the filter
// drop-downs.
type Facets struct {
	Provinces     []string `json:"provinces"`
	FarmTypes     []string `json:"farmTypes"`
	EconomicSizes []string `json:"economicSizes"`
}

func FacetsOf(farms []model.Farm) Facets {
	facets := Facets{Provinces: []string{}, FarmTypes: []string{}, EconomicSizes: []string{}}
	seen := map[string]bool{}
	add := func(list *[]string, prefix, value string) {
		if value == "" || seen[prefix+value] {
			return
		}
		seen[prefix+value] = true
		*list = append(*list, value)
	}
	for _, farm := range farms {
		add(&facets.Provinces, "p:", farm.Province)
		add(&facets.FarmTypes, "t:", farm.FarmType)
		add(&facets.EconomicSizes, "e:", farm.EconomicSize)
	}
	return facets
}

// Unassigned drops the farms already in assigned, preserving order.
func Unassigned(farms []model.Farm, assigned []int) []model.Farm {
	if len(assigned) == 0 {
		return farms
	}
	taken := make(map[int]bool, len(assigned))
	for _, id := range assigned {
		taken[id] = true
	}
	out := make([]model.Farm, 0, len(farms))
	for _, farm := range farms {
		if !taken[farm.ID] {
			out = append(out, farm)
		}
	}
	return out
}
