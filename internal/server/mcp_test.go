package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/docproc"
)

var testMCPImpl = &mcp.Implementation{Name: "docproc-test", Version: "0.1.0"}

func mcpSession(t *testing.T) *mcp.ClientSession {
	t.Helper()
	srv := New(docproc.New(), DefaultDefaults(), nil, "test").NewMCPServer()

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx := context.Background()
	go func() { _ = srv.Run(ctx, serverT) }()

	client := mcp.NewClient(testMCPImpl, nil)
	session, err := client.Connect(ctx, clientT, nil)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })
	return session
}

func callTool(t *testing.T, session *mcp.ClientSession, name string, args any) *mcp.CallToolResult {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err)
	return result
}

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.False(t, result.IsError, "tool returned an error")
	require.NotEmpty(t, result.Content)
	tc, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected TextContent")
	return tc.Text
}

func TestMCP_Formats(t *testing.T) {
	session := mcpSession(t)

	var out formatsOutput
	require.NoError(t, json.Unmarshal([]byte(toolText(t, callTool(t, session, "docproc_formats", map[string]any{}))), &out))
	assert.Len(t, out.Formats, 19)
}

func TestMCP_Parse(t *testing.T) {
	session := mcpSession(t)

	result := callTool(t, session, "docproc_parse", map[string]any{
		"content_base64": base64.StdEncoding.EncodeToString([]byte("# Title\n\nBody text.")),
		"filename":       "notes.md",
	})

	var out parseOutput
	require.NoError(t, json.Unmarshal([]byte(toolText(t, result)), &out))
	assert.Equal(t, "markdown", out.Kind)
	assert.Equal(t, "HEADING: Title\nBody text.", out.Text)
}

func TestMCP_ParseMissingSource(t *testing.T) {
	session := mcpSession(t)

	result := callTool(t, session, "docproc_parse", map[string]any{"filename": "notes.md"})
	assert.True(t, result.IsError)
}

func TestMCP_TextTools(t *testing.T) {
	session := mcpSession(t)

	var lang languageOutput
	require.NoError(t, json.Unmarshal([]byte(toolText(t, callTool(t, session, "docproc_detect_language",
		map[string]any{"text": "\u4f60\u597d\u4e16\u754c"}))), &lang))
	assert.Equal(t, "zh", lang.Language)

	var cleaned cleanOutput
	require.NoError(t, json.Unmarshal([]byte(toolText(t, callTool(t, session, "docproc_clean",
		map[string]any{"text": "a   b\r\n"}))), &cleaned))
	assert.Equal(t, "a b", cleaned.Text)

	var chunks chunkOutput
	require.NoError(t, json.Unmarshal([]byte(toolText(t, callTool(t, session, "docproc_chunk",
		map[string]any{"text": "short text", "size": 100, "overlap": 0}))), &chunks))
	require.Len(t, chunks.Chunks, 1)
	assert.Equal(t, "short text", chunks.Chunks[0].Text)
}
