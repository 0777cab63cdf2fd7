package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/plainspeak/application/service"
	"github.com/helixml/plainspeak/domain/translation"
)

// fakeTranslator records the fields it receives and returns a canned result.
type fakeTranslator struct {
	got translation.Fields
	err error
}

func (f *fakeTranslator) Translate(_ context.Context, fields translation.Fields) (service.Translation, error) {
	f.got = fields
	if f.err != nil {
		return service.Translation{}, f.err
	}
	result, err := translation.NewResult(
		translation.NewSection(translation.SectionTranslation, "Please reply by Friday."),
	)
	if err != nil {
		return service.Translation{}, err
	}
	return service.NewTranslation(result, true), nil
}

// fakeExtractor returns text for any non-empty image.
type fakeExtractor struct {
	got []byte
}

func (f *fakeExtractor) ExtractText(_ context.Context, image []byte) (string, error) {
	f.got = image
	return "Per my last email.", nil
}

// rpc sends one JSON-RPC request through the server and decodes its result
// into dst when dst is non-nil.
func rpc(t *testing.T, srv *Server, id int, method string, params any, dst any) {
	t.Helper()

	raw, err := json.Marshal(struct {
		JSONRPC string `json:"jsonrpc"`
		ID      int    `json:"id"`
		Method  string `json:"method"`
		Params  any    `json:"params,omitempty"`
	}{"2.0", id, method, params})
	require.NoError(t, err)

	reply := srv.MCPServer().HandleMessage(context.Background(), raw)
	resp, ok := reply.(mcp.JSONRPCResponse)
	require.Truef(t, ok, "%s: unexpected reply %T: %+v", method, reply, reply)
	if dst == nil {
		return
	}

	body, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, dst))
}

// firstText returns the text of the first content block.
func firstText(t *testing.T, result mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	tc, ok := mcp.AsTextContent(result.Content[0])
	require.Truef(t, ok, "content is %T, not text", result.Content[0])
	return tc.Text
}

func initializeParams() map[string]any {
	return map[string]any{
		"protocolVersion": "2025-06-18",
		"capabilities":    map[string]any{},
		"clientInfo": map[string]any{
			"name":    "test-client",
			"version": "0.0.1",
		},
	}
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) mcp.CallToolResult {
	t.Helper()
	rpc(t, srv, 1, "initialize", initializeParams(), nil)
	var result mcp.CallToolResult
	rpc(t, srv, 2, "tools/call", map[string]any{"name": name, "arguments": args}, &result)
	return result
}

func TestServer_Initialize(t *testing.T) {
	srv := NewServer(&fakeTranslator{}, nil, "1.2.3", nil)

	var result mcp.InitializeResult
	rpc(t, srv, 1, "initialize", initializeParams(), &result)

	assert.Equal(t, "plainspeak", result.ServerInfo.Name)
	assert.Equal(t, "1.2.3", result.ServerInfo.Version)
	assert.NotNil(t, result.Capabilities.Tools)
}

func TestServer_ListTools(t *testing.T) {
	tests := []struct {
		name      string
		extractor TextExtractor
		want      []string
	}{
		{"translate only", nil, []string{ToolTranslatePhrase}},
		{"with extraction", &fakeExtractor{}, []string{ToolExtractText, ToolTranslatePhrase}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := NewServer(&fakeTranslator{}, tt.extractor, "test", nil)
			rpc(t, srv, 1, "initialize", initializeParams(), nil)

			var result mcp.ListToolsResult
			rpc(t, srv, 2, "tools/list", nil, &result)

			tools := map[string]mcp.Tool{}
			var names []string
			for _, tool := range result.Tools {
				tools[tool.Name] = tool
				names = append(names, tool.Name)
			}
			assert.ElementsMatch(t, tt.want, names)

			props := tools[ToolTranslatePhrase].InputSchema.Properties
			for _, param := range []string{"text", "mode", "tone", "explain"} {
				assert.Contains(t, props, param)
			}
		})
	}
}

func TestServer_TranslatePhrase(t *testing.T) {
	translator := &fakeTranslator{}
	srv := NewServer(translator, nil, "test", nil)

	result := callTool(t, srv, ToolTranslatePhrase, map[string]any{
		"text":    "Let's circle back.",
		"mode":    "nt-to-nd",
		"tone":    "formal",
		"explain": "yes",
	})
	require.False(t, result.IsError, firstText(t, result))

	assert.Equal(t, translation.Fields{
		Text:           "Let's circle back.",
		Mode:           "nt-to-nd",
		Tone:           "formal",
		ExplainContext: "yes",
	}, translator.got)

	var out translateResult
	require.NoError(t, json.Unmarshal([]byte(firstText(t, result)), &out))
	require.Len(t, out.Sections, 1)
	assert.Equal(t, "Translation", out.Sections[0].Name)
	assert.True(t, out.Cached)
	assert.Equal(t, translation.Disclaimer, out.Disclaimer)
}

func TestServer_ToolErrors(t *testing.T) {
	tests := []struct {
		name      string
		translate Translator
		extract   TextExtractor
		tool      string
		args      map[string]any
		want      string
	}{
		{
			name:      "missing text",
			translate: &fakeTranslator{},
			tool:      ToolTranslatePhrase,
			args:      map[string]any{},
			want:      "text is required",
		},
		{
			name:      "service unavailable",
			translate: &fakeTranslator{err: translation.ErrServiceUnavailable},
			tool:      ToolTranslatePhrase,
			args:      map[string]any{"text": "hello"},
			want:      translation.UserMessage(translation.ErrServiceUnavailable),
		},
		{
			name:      "missing image",
			translate: &fakeTranslator{},
			extract:   &fakeExtractor{},
			tool:      ToolExtractText,
			args:      map[string]any{},
			want:      "image is required",
		},
		{
			name:      "bad encoding",
			translate: &fakeTranslator{},
			extract:   &fakeExtractor{},
			tool:      ToolExtractText,
			args:      map[string]any{"image": "not base64!"},
			want:      "image must be base64 encoded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := NewServer(tt.translate, tt.extract, "test", nil)
			result := callTool(t, srv, tt.tool, tt.args)
			require.True(t, result.IsError)
			assert.Contains(t, firstText(t, result), tt.want)
		})
	}
}

func TestServer_ExtractText(t *testing.T) {
	extractor := &fakeExtractor{}
	srv := NewServer(&fakeTranslator{}, extractor, "test", nil)

	image := []byte("\x89PNG\r\n\x1a\n")
	result := callTool(t, srv, ToolExtractText, map[string]any{
		"image": base64.StdEncoding.EncodeToString(image),
	})
	require.False(t, result.IsError, firstText(t, result))
	assert.Equal(t, "Per my last email.", firstText(t, result))
	assert.Equal(t, image, extractor.got)
}
