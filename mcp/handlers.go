package mcp

import (
	"context"
	"fmt"

	"github.com/ludo-technologies/cflow/domain"
	"github.com/ludo-technologies/cflow/internal/cfg"
	"github.com/mark3labs/mcp-go/mcp"
)

// Handlers implements the cflow MCP tools against a fixed set of
// dependencies.
type Handlers struct {
	deps *Dependencies
}

// NewHandlers builds a Handlers bound to deps.
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{deps: deps}
}

// HandleLowerProgram handles the lower_program tool.
func (h *Handlers) HandleLowerProgram(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}

	program, ok := args["program"].(string)
	if !ok {
		return mcp.NewToolResultError("program parameter is required and must be a string"), nil
	}

	checkReachability := h.deps.Config.Analysis.CheckReachability
	if v, ok := args["check_reachability"].(bool); ok {
		checkReachability = v
	}

	root, err := h.deps.Loader.LoadBytes([]byte(program))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	prog, err := cfg.Lower(root)
	if err != nil {
		return mcp.NewToolResultError(domain.CategorizeLoweringError(err).Error()), nil
	}

	if checkReachability {
		want := cfg.Reachability(prog)
		if len(want) != len(prog.Nodes) {
			return mcp.NewToolResultError(fmt.Sprintf(
				"reachability mismatch: engine produced %d nodes, independent walk found %d",
				len(prog.Nodes), len(want))), nil
		}
	}

	return mcp.NewToolResultText(prog.String()), nil
}

// HandlePrintTree handles the print_tree tool.
func (h *Handlers) HandlePrintTree(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}

	program, ok := args["program"].(string)
	if !ok {
		return mcp.NewToolResultError("program parameter is required and must be a string"), nil
	}

	root, err := h.deps.Loader.LoadBytes([]byte(program))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(root.String()), nil
}
