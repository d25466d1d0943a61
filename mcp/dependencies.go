package mcp

import (
	"github.com/ludo-technologies/cflow/internal/config"
	"github.com/ludo-technologies/cflow/service"
)

// Dependencies holds the constructed services a Handlers value needs,
// grounded on the teacher's mcp.Dependencies: built once in main and
// threaded through so handlers stay free of global state.
type Dependencies struct {
	Config *config.Config
	Loader *service.ProgramLoader
}

// NewDependencies builds the default dependency set.
func NewDependencies(cfg *config.Config) *Dependencies {
	return &Dependencies{
		Config: cfg,
		Loader: service.NewProgramLoader(),
	}
}
