package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleAnalyze_RejectsMissingRoot(t *testing.T) {
	s := New("test")
	req := &mcp.CallToolRequest{Params: &mcp.CallToolParamsRaw{Arguments: json.RawMessage(`{}`)}}

	res, err := s.handleAnalyze(context.Background(), req)
	require.NoError(t, err)
	require.True(t, res.IsError)

	var payload map[string]interface{}
	text := res.Content[0].(*mcp.TextContent).Text
	require.NoError(t, json.Unmarshal([]byte(text), &payload))
	assert.Equal(t, false, payload["success"])
}

func TestHandleAnalyze_RejectsMalformedArguments(t *testing.T) {
	s := New("test")
	req := &mcp.CallToolRequest{Params: &mcp.CallToolParamsRaw{Arguments: json.RawMessage(`not-json`)}}

	res, err := s.handleAnalyze(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestHandleAnalyze_RejectsMissingSourceDir(t *testing.T) {
	s := New("test")
	args, err := json.Marshal(map[string]string{"root": "/no/such/path/does-not-exist"})
	require.NoError(t, err)
	req := &mcp.CallToolRequest{Params: &mcp.CallToolParamsRaw{Arguments: args}}

	res, callErr := s.handleAnalyze(context.Background(), req)
	require.NoError(t, callErr)
	assert.True(t, res.IsError)
}

func TestErrorResult_SetsIsError(t *testing.T) {
	res := errorResult(assertError{"boom"})
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].(*mcp.TextContent).Text, "boom")
}

type assertError struct{ msg string }

func (e assertError) Error() string { return e.msg }
