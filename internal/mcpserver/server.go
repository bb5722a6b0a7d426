package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer creates a configured MCP server with all Riskscreen tools registered.
func NewMCPServer(cfg Config) *server.MCPServer {
	s := server.NewMCPServer("riskscreen", "1.0.0")
	client := NewRiskscreenClient(cfg)
	h := NewHandlers(client)

	s.AddTool(ToolScreenSubject, h.HandleScreenSubject)
	s.AddTool(ToolScreenTransactions, h.HandleScreenTransactions)
	s.AddTool(ToolGetScreening, h.HandleGetScreening)
	s.AddTool(ToolListScreenings, h.HandleListScreenings)
	s.AddTool(ToolListSources, h.HandleListSources)
	s.AddTool(ToolListRules, h.HandleListRules)

	return s
}
