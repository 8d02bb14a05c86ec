package memory

import (
	"testing"

	"github.com/rpupo63/mindmesh-portfolio/database"
	"github.com/rpupo63/mindmesh-portfolio/database/repotest"
)

func TestStore(t *testing.T) {
	repotest.Run(t, func(*testing.T) database.Repository { return New() })
}
