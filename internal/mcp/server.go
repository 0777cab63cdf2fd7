// Package mcp provides Model Context Protocol server functionality.
package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/helixml/plainspeak/application/service"
	"github.com/helixml/plainspeak/domain/translation"
)

// Tool names.
const (
	ToolTranslatePhrase = "translate_phrase"
	ToolExtractText     = "extract_text"
)

// Translator provides phrase translation for MCP tools.
type Translator interface {
	Translate(ctx context.Context, fields translation.Fields) (service.Translation, error)
}

// TextExtractor reads text from uploaded images for MCP tools.
type TextExtractor interface {
	ExtractText(ctx context.Context, image []byte) (string, error)
}

// Server wraps the MCP server with plainspeak tools.
type Server struct {
	mcpServer  *server.MCPServer
	translator Translator
	extractor  TextExtractor
	logger     *slog.Logger
}

// NewServer creates a new MCP server. A nil extractor leaves the
// extract_text tool unregistered.
func NewServer(translator Translator, extractor TextExtractor, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		translator: translator,
		extractor:  extractor,
		logger:     logger,
	}

	mcpServer := server.NewMCPServer(
		"plainspeak",
		version,
		server.WithToolCapabilities(true),
	)

	s.registerTools(mcpServer)

	s.mcpServer = mcpServer
	return s
}

func (s *Server) registerTools(mcpServer *server.MCPServer) {
	translateTool := mcp.NewTool(ToolTranslatePhrase,
		mcp.WithDescription("Rewrite a phrase between neurotypical and neurodivergent communication styles"),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("The phrase to rewrite (up to 1000 characters)"),
		),
		mcp.WithString("mode",
			mcp.Description("Direction: nt-to-nd or nd-to-nt. Anything else gives a literal reading"),
		),
		mcp.WithString("tone",
			mcp.Description("Tone of the rewrite: neutral, formal, casual or empathetic (default: neutral)"),
		),
		mcp.WithString("explain",
			mcp.Description("yes to include an analysis of literal and implied meaning"),
		),
	)
	mcpServer.AddTool(translateTool, s.handleTranslate)

	if s.extractor == nil {
		return
	}
	extractTool := mcp.NewTool(ToolExtractText,
		mcp.WithDescription("Read the text in an image so it can be translated"),
		mcp.WithString("image",
			mcp.Required(),
			mcp.Description("Base64 encoded PNG, JPEG, GIF, BMP, TIFF or WEBP image"),
		),
	)
	mcpServer.AddTool(extractTool, s.handleExtract)
}

type sectionResult struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type translateResult struct {
	Sections   []sectionResult `json:"sections"`
	Cached     bool            `json:"cached"`
	Disclaimer string          `json:"disclaimer"`
}

func (s *Server) handleTranslate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text is required"), nil
	}

	out, err := s.translator.Translate(ctx, translation.Fields{
		Text:           text,
		Mode:           request.GetString("mode", ""),
		Tone:           request.GetString("tone", ""),
		ExplainContext: request.GetString("explain", ""),
	})
	if err != nil {
		s.logger.Warn("translate tool failed", slog.Any("error", err))
		return mcp.NewToolResultError(translation.UserMessage(err)), nil
	}

	sections := out.Result().Sections()
	result := translateResult{
		Sections:   make([]sectionResult, len(sections)),
		Cached:     out.Cached(),
		Disclaimer: translation.Disclaimer,
	}
	for i, sec := range sections {
		result.Sections[i] = sectionResult{Name: string(sec.Name()), Content: sec.Content()}
	}

	jsonBytes, err := json.Marshal(result)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleExtract(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	encoded, err := request.RequireString("image")
	if err != nil {
		return mcp.NewToolResultError("image is required"), nil
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return mcp.NewToolResultError("image must be base64 encoded"), nil
	}

	text, err := s.extractor.ExtractText(ctx, data)
	if err != nil {
		s.logger.Warn("extract tool failed", slog.Any("error", err))
		return mcp.NewToolResultError(translation.UserMessage(err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// MCPServer returns the underlying MCP server for stdio serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio runs the MCP server on stdio.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
