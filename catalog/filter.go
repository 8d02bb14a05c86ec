// Package catalog holds the in-memory project snapshot and the pure derivations the
// public showcase renders from it.
package catalog

import (
	"sort"
	"strings"

	"github.com/rpupo63/mindmesh-portfolio/models"
)

// AllTechnologies is the technology filter value meaning "no tag restriction".
const AllTechnologies = "all"

// SortKey selects the ordering of the visible list.
type SortKey string

const (
	SortMostRecent     SortKey = "most-recent"
	SortComplexityDesc SortKey = "complexity-desc"
	SortComplexityAsc  SortKey = "complexity-asc"
)

// ParseSortKey maps query-string values (including the labels shown in the UI) onto a
// SortKey. Anything unrecognised orders by most recent.
func ParseSortKey(s string) SortKey {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "complexity-desc", "complexity high to low":
		return SortComplexityDesc
	case "complexity-asc", "complexity low to high":
		return SortComplexityAsc
	default:
		return SortMostRecent
	}
}

// Query is everything the visitor controls on the showcase.
type Query struct {
	Search     string
	Technology string
	Sort       SortKey
}

// Filter returns the projects matching q, ordered by q.Sort. The input slice is not
// modified; ties keep their input order.
func Filter(projects []models.Project, q Query) []models.Project {
	search := strings.ToLower(q.Search)
	out := make([]models.Project, 0, len(projects))
	for _, p := range projects {
		if matchesSearch(p, search) && matchesTechnology(p, q.Technology) {
			out = append(out, p)
		}
	}
	Sort(out, q.Sort)
	return out
}

// Sort orders projects in place with a stable sort.
func Sort(projects []models.Project, key SortKey) {
	var less func(a, b models.Project) bool
	switch key {
	case SortComplexityDesc:
		less = func(a, b models.Project) bool { return a.Complexity > b.Complexity }
	case SortComplexityAsc:
		less = func(a, b models.Project) bool { return a.Complexity < b.Complexity }
	default:
		less = func(a, b models.Project) bool { return a.ProjectDate.After(b.ProjectDate.Time) }
	}
	sort.SliceStable(projects, func(i, j int) bool { return less(projects[i], projects[j]) })
}

func matchesSearch(p models.Project, lowered string) bool {
	if strings.TrimSpace(lowered) == "" {
		return true
	}
	if strings.Contains(strings.ToLower(p.Name), lowered) ||
		strings.Contains(strings.ToLower(p.ShortDescription), lowered) {
		return true
	}
	for _, t := range p.Technologies {
		if strings.Contains(strings.ToLower(t), lowered) {
			return true
		}
	}
	return false
}

func matchesTechnology(p models.Project, tech string) bool {
	if IsAllTechnologies(tech) {
		return true
	}
	for _, t := range p.Technologies {
		if t == tech {
			return true
		}
	}
	return false
}

// IsAllTechnologies reports whether tech is the sentinel (or empty).
func IsAllTechnologies(tech string) bool {
	return tech == "" || strings.EqualFold(tech, AllTechnologies)
}

// ActiveOnly returns the projects with the active flag set, preserving order.
func ActiveOnly(projects []models.Project) []models.Project {
	out := make([]models.Project, 0, len(projects))
	for _, p := range projects {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out
}

// Technologies is the sorted, de-duplicated union of the active projects' tags.
func Technologies(projects []models.Project) []string {
	seen := make(map[string]struct{})
	for _, p := range projects {
		if !p.IsActive {
			continue
		}
		for _, t := range p.Technologies {
			seen[t] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
