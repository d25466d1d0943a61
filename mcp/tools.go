// Package mcp exposes the lowering and structured-tree operations as MCP
// tools, grounded on the teacher's mcp package (tools.go registers tool
// schemas, handlers.go implements them by calling service.ProgramLoader
// and internal/cfg directly, not through the app use case the CLI
// drives).
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterTools registers the cflow MCP tools with the server.
func RegisterTools(s *server.MCPServer, h *Handlers) {
	s.AddTool(mcp.NewTool("lower_program",
		mcp.WithDescription("Lower a structured program description to its control flow graph"),
		mcp.WithString("program",
			mcp.Required(),
			mcp.Description("The program description, in YAML (see the project's program description format)")),
		mcp.WithBoolean("check_reachability",
			mcp.Description("Cross-check the reachable node set against an independent graph walk (default: false)")),
	), h.HandleLowerProgram)

	s.AddTool(mcp.NewTool("print_tree",
		mcp.WithDescription("Print the structured tree form of a program description, without lowering"),
		mcp.WithString("program",
			mcp.Required(),
			mcp.Description("The program description, in YAML")),
	), h.HandlePrintTree)
}
