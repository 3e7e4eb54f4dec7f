package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/ironsheep/image-prep/internal/imaging"
	"github.com/ironsheep/image-prep/internal/sequence"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_circle_mask").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		log.Error().Err(err).Str("tool", params.Name).Msg("Tool execution failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Images
	case "image_info":
		return s.handleImageInfo(args)
	case "image_circle_mask":
		return s.handleImageCircleMask(args)

	// Files
	case "files_rename_sequence":
		return s.handleFilesRenameSequence(ctx, args)
	case "files_rename_undo":
		return s.handleFilesRenameUndo(ctx, args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments, treating missing arguments as {}.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// === Image Handlers ===

type imageInfoArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageInfo(args json.RawMessage) (interface{}, error) {
	var a imageInfoArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

type imageCircleMaskArgs struct {
	Input  string `json:"input"`
	Output string `json:"output"`
	imaging.CircleOptions
}

func (s *Server) handleImageCircleMask(args json.RawMessage) (interface{}, error) {
	var a imageCircleMaskArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Input == "" {
		return nil, fmt.Errorf("input is required")
	}

	if a.Output != "" {
		return imaging.MakeCircleFile(s.cache, a.Input, a.Output, a.CircleOptions)
	}

	img, err := s.cache.Load(a.Input)
	if err != nil {
		return nil, err
	}
	out, err := imaging.MakeCircle(img, a.CircleOptions)
	if err != nil {
		return nil, err
	}
	return imaging.EncodePNGBase64(out)
}

// === File Handlers ===

type filesRenameSequenceArgs struct {
	Dir     string `json:"dir"`
	Ext     string `json:"ext"`
	Start   int    `json:"start"`
	DryRun  bool   `json:"dry_run"`
	Journal string `json:"journal"`
}

func (s *Server) handleFilesRenameSequence(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a filesRenameSequenceArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Dir == "" {
		return nil, fmt.Errorf("dir is required")
	}
	return s.renamer.Run(ctx, a.Dir, sequence.Options{
		Ext:         a.Ext,
		Start:       a.Start,
		DryRun:      a.DryRun,
		JournalPath: a.Journal,
	})
}

type filesRenameUndoArgs struct {
	Journal string `json:"journal"`
}

func (s *Server) handleFilesRenameUndo(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a filesRenameUndoArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Journal == "" {
		return nil, fmt.Errorf("journal is required")
	}
	return s.renamer.Undo(ctx, a.Journal)
}
