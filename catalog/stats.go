package catalog

import "github.com/rpupo63/mindmesh-portfolio/models"

// Stats is the dashboard summary of the catalog.
type Stats struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}

func Summarize(projects []models.Project) Stats {
	s := Stats{Total: len(projects)}
	for _, p := range projects {
		if p.IsActive {
			s.Active++
		}
	}
	s.Inactive = s.Total - s.Active
	return s
}
