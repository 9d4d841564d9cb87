package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/boardcfg/internal/models"
	"github.com/joescharf/boardcfg/internal/service"
	"github.com/joescharf/boardcfg/internal/store"
	"github.com/joescharf/boardcfg/internal/tracker"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func newTestServer(t *testing.T, source tracker.Source) (*Server, store.Store) {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(service.New(s, source, logger), "test"), s
}

func fixtureSource() tracker.Source {
	return tracker.NewFileSource(filepath.Join("..", "tracker", "testdata", "metadata.yaml"))
}

// callToolReq builds a CallToolRequest with the given tool name and arguments.
func callToolReq(name string, args map[string]any) mcpgo.CallToolRequest {
	return mcpgo.CallToolRequest{
		Params: mcpgo.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

// resultText extracts the concatenated text from a CallToolResult.
func resultText(t *testing.T, result *mcpgo.CallToolResult) string {
	t.Helper()
	var b strings.Builder
	for _, c := range result.Content {
		tc, ok := c.(mcpgo.TextContent)
		if ok {
			b.WriteString(tc.Text)
		}
	}
	return b.String()
}

// resultJSON parses the text result as JSON into the provided target.
func resultJSON(t *testing.T, result *mcpgo.CallToolResult, target any) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), target))
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestMCPIntegration_ListTools(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	mcpSrv := srv.MCPServer()
	require.NotNil(t, mcpSrv)

	reqJSON := []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list","params":{}}`)
	respMsg := mcpSrv.HandleMessage(context.Background(), reqJSON)
	require.NotNil(t, respMsg)

	respBytes, err := json.Marshal(respMsg)
	require.NoError(t, err)

	var rpcResp struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(respBytes, &rpcResp))

	toolNames := make(map[string]bool)
	for _, tool := range rpcResp.Result.Tools {
		toolNames[tool.Name] = true
	}
	for _, name := range []string{
		"boardcfg_get_configuration",
		"boardcfg_validate",
		"boardcfg_suggest",
		"boardcfg_auto_detect",
	} {
		assert.True(t, toolNames[name], "expected tool %q to be registered", name)
	}
}

func TestGetConfiguration(t *testing.T) {
	srv, st := newTestServer(t, nil)
	ctx := context.Background()
	_, err := st.ReplaceRoles(ctx, []models.Role{{Code: "DEV", DisplayName: "Development", IsDefault: true}})
	require.NoError(t, err)

	result, err := srv.handleGetConfiguration(ctx, callToolReq("boardcfg_get_configuration", nil))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var cfg models.Configuration
	resultJSON(t, result, &cfg)
	require.Len(t, cfg.Roles, 1)
	assert.Equal(t, "DEV", cfg.Roles[0].Code)
	assert.Empty(t, cfg.Statuses)

	result, err = srv.handleGetConfiguration(ctx, callToolReq("boardcfg_get_configuration", map[string]any{"table": "roles"}))
	require.NoError(t, err)
	var roles []models.Role
	resultJSON(t, result, &roles)
	assert.Len(t, roles, 1)

	result, err = srv.handleGetConfiguration(ctx, callToolReq("boardcfg_get_configuration", map[string]any{"table": "widgets"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestValidate(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	result, err := srv.handleValidate(context.Background(), callToolReq("boardcfg_validate", nil))
	require.NoError(t, err)

	var vr models.ValidationResult
	resultJSON(t, result, &vr)
	assert.True(t, vr.Valid)
	assert.NotEmpty(t, vr.Warnings)
}

func TestSuggest_DoesNotPersist(t *testing.T) {
	srv, st := newTestServer(t, fixtureSource())
	ctx := context.Background()

	result, err := srv.handleSuggest(ctx, callToolReq("boardcfg_suggest", nil))
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	var out struct {
		Configuration models.Configuration `json:"configuration"`
		Warnings      []string             `json:"warnings"`
	}
	resultJSON(t, result, &out)
	assert.Len(t, out.Configuration.IssueTypes, 7)
	assert.NotNil(t, out.Warnings)

	cfg, err := st.GetConfiguration(ctx)
	require.NoError(t, err)
	assert.Empty(t, cfg.IssueTypes)
}

func TestSuggest_NoSource(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	result, err := srv.handleSuggest(context.Background(), callToolReq("boardcfg_suggest", nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "no tracker source configured")
}

func TestAutoDetect(t *testing.T) {
	srv, st := newTestServer(t, fixtureSource())
	ctx := context.Background()

	t.Run("requires confirm", func(t *testing.T) {
		result, err := srv.handleAutoDetect(ctx, callToolReq("boardcfg_auto_detect", map[string]any{"confirm": false}))
		require.NoError(t, err)
		assert.True(t, result.IsError)

		cfg, err := st.GetConfiguration(ctx)
		require.NoError(t, err)
		assert.Empty(t, cfg.Roles)
	})

	t.Run("replaces configuration", func(t *testing.T) {
		result, err := srv.handleAutoDetect(ctx, callToolReq("boardcfg_auto_detect", map[string]any{"confirm": true}))
		require.NoError(t, err)
		require.False(t, result.IsError, resultText(t, result))

		var ar models.AutoDetectResult
		resultJSON(t, result, &ar)
		assert.Equal(t, 7, ar.IssueTypeCount)
		assert.Equal(t, 3, ar.RoleCount)

		cfg, err := st.GetConfiguration(ctx)
		require.NoError(t, err)
		assert.Len(t, cfg.IssueTypes, 7)
	})
}
