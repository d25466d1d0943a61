package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ludo-technologies/cflow/internal/config"
	"github.com/ludo-technologies/cflow/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

const (
	serverName    = "cflow"
	serverVersion = "1.0.0"
)

func main() {
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	server := mcpserver.NewMCPServer(
		serverName,
		serverVersion,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithLogging(),
	)

	configPath := os.Getenv("CFLOW_CONFIG")
	cfg, err := config.LoadConfig(configPath, ".")
	if err != nil {
		log.Printf("Warning: failed to load config: %v, using defaults", err)
		cfg = config.DefaultConfig()
	}

	deps := mcp.NewDependencies(cfg)
	handlers := mcp.NewHandlers(deps)
	mcp.RegisterTools(server, handlers)

	log.Printf("Starting %s MCP server v%s\n", serverName, serverVersion)
	log.Println("Registered tools:")
	log.Println("  - lower_program: lower a structured program description to its CFG")
	log.Println("  - print_tree: print a structured program description's tree form")
	log.Println("")
	log.Println("Server ready - waiting for MCP client connection...")

	if err := mcpserver.ServeStdio(server); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
