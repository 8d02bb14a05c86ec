package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/mindmesh-portfolio/models"
)

func project(name string, techs []string, complexity float64, date string, active bool) models.Project {
	return models.Project{
		Name:             name,
		ShortDescription: name + " description",
		Technologies:     techs,
		Complexity:       complexity,
		ProjectDate:      models.MustParseDate(date),
		IsActive:         active,
	}
}

func names(projects []models.Project) []string {
	out := make([]string, 0, len(projects))
	for _, p := range projects {
		out = append(out, p.Name)
	}
	return out
}

func alphaBeta() []models.Project {
	return []models.Project{
		project("Alpha", []string{"Go"}, 9, "2024-01-01", true),
		project("Beta", []string{"Rust"}, 3, "2024-06-01", true),
	}
}

func TestFilterAlphaBeta(t *testing.T) {
	catalog := alphaBeta()

	assert.Equal(t, []string{"Beta", "Alpha"}, names(Filter(catalog, Query{Technology: "all", Sort: SortMostRecent})))
	assert.Equal(t, []string{"Alpha", "Beta"}, names(Filter(catalog, Query{Technology: "all", Sort: SortComplexityDesc})))

	for _, key := range []SortKey{SortMostRecent, SortComplexityDesc, SortComplexityAsc} {
		assert.Equal(t, []string{"Alpha"}, names(Filter(catalog, Query{Search: "alpha", Technology: "all", Sort: key})))
	}
}

func TestFilterEmptySearchReturnsActiveSubset(t *testing.T) {
	catalog := []models.Project{
		project("One", []string{"Go"}, 5, "2024-01-01", true),
		project("Two", []string{"Go"}, 6, "2024-02-01", false),
		project("Three", []string{"Python"}, 7, "2024-03-01", true),
	}

	got := Filter(ActiveOnly(catalog), Query{Search: "   ", Technology: "All"})
	assert.Equal(t, []string{"Three", "One"}, names(got))
}

func TestFilterPredicates(t *testing.T) {
	catalog := []models.Project{
		project("Dashboard", []string{"React", "Python"}, 9.9, "2024-03-01", true),
		project("Shop", []string{"Node.js", "Stripe"}, 8.8, "2024-02-10", true),
		project("Scraper", []string{"python", "BeautifulSoup"}, 7.6, "2024-01-05", true),
	}

	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{"search matches name case-insensitively", Query{Search: "SHOP"}, []string{"Shop"}},
		{"search matches description", Query{Search: "scraper desc"}, []string{"Scraper"}},
		{"search matches technology", Query{Search: "stri"}, []string{"Shop"}},
		{"search across tag case", Query{Search: "python"}, []string{"Dashboard", "Scraper"}},
		{"tag filter is case-sensitive", Query{Technology: "Python"}, []string{"Dashboard"}},
		{"tag filter lowercase variant", Query{Technology: "python"}, []string{"Scraper"}},
		{"empty tag is the sentinel", Query{Technology: ""}, []string{"Dashboard", "Shop", "Scraper"}},
		{"both predicates must pass", Query{Search: "shop", Technology: "React"}, []string{}},
		{"no match", Query{Search: "kubernetes"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(Filter(catalog, tt.query)))
		})
	}
}

func TestComplexitySortsAreReversed(t *testing.T) {
	catalog := []models.Project{
		project("A", nil, 4.2, "2024-01-01", true),
		project("B", nil, 9.1, "2024-01-02", true),
		project("C", nil, 1.5, "2024-01-03", true),
		project("D", nil, 7.0, "2024-01-04", true),
	}

	desc := names(Filter(catalog, Query{Sort: SortComplexityDesc}))
	asc := names(Filter(catalog, Query{Sort: SortComplexityAsc}))
	require.Len(t, asc, len(desc))
	for i := range desc {
		assert.Equal(t, desc[i], asc[len(asc)-1-i])
	}
}

func TestSortIsStableOnTies(t *testing.T) {
	catalog := []models.Project{
		project("First", nil, 5, "2024-01-01", true),
		project("Second", nil, 5, "2024-01-01", true),
		project("Third", nil, 5, "2024-01-01", true),
	}

	for _, key := range []SortKey{SortMostRecent, SortComplexityDesc, SortComplexityAsc} {
		assert.Equal(t, []string{"First", "Second", "Third"}, names(Filter(catalog, Query{Sort: key})))
	}
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	catalog := alphaBeta()
	_ = Filter(catalog, Query{Sort: SortMostRecent})
	assert.Equal(t, []string{"Alpha", "Beta"}, names(catalog))
}

func TestParseSortKey(t *testing.T) {
	assert.Equal(t, SortComplexityDesc, ParseSortKey("complexity-desc"))
	assert.Equal(t, SortComplexityAsc, ParseSortKey(" Complexity-ASC "))
	assert.Equal(t, SortComplexityDesc, ParseSortKey("Complexity High to Low"))
	assert.Equal(t, SortMostRecent, ParseSortKey(""))
	assert.Equal(t, SortMostRecent, ParseSortKey("alphabetical"))
}

func TestTechnologies(t *testing.T) {
	catalog := []models.Project{
		project("One", []string{"Go", "React"}, 5, "2024-01-01", true),
		project("Two", []string{"React", "Docker"}, 5, "2024-01-01", true),
		project("Hidden", []string{"Cobol"}, 5, "2024-01-01", false),
	}
	assert.Equal(t, []string{"Docker", "Go", "React"}, Technologies(catalog))
	assert.Empty(t, Technologies(nil))
}

func TestSummarize(t *testing.T) {
	catalog := []models.Project{
		project("One", nil, 5, "2024-01-01", true),
		project("Two", nil, 5, "2024-01-01", false),
		project("Three", nil, 5, "2024-01-01", true),
	}
	assert.Equal(t, Stats{Total: 3, Active: 2, Inactive: 1}, Summarize(catalog))
}
