package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/joescharf/boardcfg/internal/classify"
	"github.com/joescharf/boardcfg/internal/models"
	"github.com/joescharf/boardcfg/internal/service"
)

// Server exposes the workflow configuration service as MCP tools.
type Server struct {
	svc     *service.Service
	version string
}

// NewServer creates the MCP server wrapper.
func NewServer(svc *service.Service, version string) *Server {
	return &Server{svc: svc, version: version}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("boardcfg", s.version, server.WithToolCapabilities(true))

	srv.AddTool(s.getConfigurationTool())
	srv.AddTool(s.validateTool())
	srv.AddTool(s.suggestTool())
	srv.AddTool(s.autoDetectTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := s.MCPServer()
	stdioServer := server.NewStdioServer(srv)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// ---------------------------------------------------------------------------
// Tool definitions and handlers
// ---------------------------------------------------------------------------

// boardcfg_get_configuration
func (s *Server) getConfigurationTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("boardcfg_get_configuration",
		mcp.WithDescription("Get the committed workflow configuration: roles, issue type mappings, status mappings and link type mappings."),
		mcp.WithString("table",
			mcp.Description("Return only one table"),
			mcp.Enum(string(models.TableRoles), string(models.TableIssueTypes), string(models.TableStatuses), string(models.TableLinkTypes)),
		),
	)
	return tool, s.handleGetConfiguration
}

func (s *Server) handleGetConfiguration(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := s.svc.GetConfiguration(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read configuration: %v", err)), nil
	}

	switch table := models.Table(request.GetString("table", "")); table {
	case "":
		return jsonResult(cfg)
	case models.TableRoles:
		return jsonResult(cfg.Roles)
	case models.TableIssueTypes:
		return jsonResult(cfg.IssueTypes)
	case models.TableStatuses:
		return jsonResult(cfg.Statuses)
	case models.TableLinkTypes:
		return jsonResult(cfg.LinkTypes)
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown table: %s", table)), nil
	}
}

// boardcfg_validate
func (s *Server) validateTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("boardcfg_validate",
		mcp.WithDescription("Check the committed configuration for structural errors and warnings. Read-only."),
	)
	return tool, s.handleValidate
}

func (s *Server) handleValidate(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.Validate(ctx))
}

// boardcfg_suggest
func (s *Server) suggestTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("boardcfg_suggest",
		mcp.WithDescription("Fetch tracker metadata and return the suggested configuration without saving it."),
	)
	return tool, s.handleSuggest
}

func (s *Server) handleSuggest(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	meta, err := s.svc.Fetch(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to fetch tracker metadata: %v", err)), nil
	}
	suggestion := classify.Suggest(meta)
	warnings := suggestion.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	return jsonResult(map[string]any{
		"configuration": suggestion.Config,
		"warnings":      warnings,
	})
}

// boardcfg_auto_detect
func (s *Server) autoDetectTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("boardcfg_auto_detect",
		mcp.WithDescription("Fetch tracker metadata, classify it and overwrite all four configuration tables. Returns counts and warnings."),
		mcp.WithBoolean("confirm", mcp.Required(), mcp.Description("Must be true; the committed configuration is replaced")),
	)
	return tool, s.handleAutoDetect
}

func (s *Server) handleAutoDetect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !request.GetBool("confirm", false) {
		return mcp.NewToolResultError("auto-detect replaces the configuration; pass confirm=true"), nil
	}
	result, err := s.svc.RunAutoDetect(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("auto-detect failed: %v", err)), nil
	}
	return jsonResult(result)
}
