package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rivelin/scribe/extract"
)

// ProcessFunc runs one file through the pipeline. The binary injects a
// wrapper that also records journal and metric outcomes, so tool calls and
// watcher events leave the same trail.
type ProcessFunc func(ctx context.Context, path string) (*Result, error)

// SweepFunc processes every supported file under a root once.
type SweepFunc func(ctx context.Context, root string) (processed, failed int)

// MCPTools wires the tool surface. Sweep may be nil; scribe_sweep is then
// not registered.
type MCPTools struct {
	Process     ProcessFunc
	Sweep       SweepFunc
	Registry    *extract.Registry
	DefaultRoot string
}

// RegisterMCP registers the scribe tools on an MCP server.
func RegisterMCP(srv *mcp.Server, tools MCPTools) {
	registerProcessTool(srv, tools)
	registerDetectTool(srv, tools)
	registerFormatsTool(srv, tools)
	if tools.Sweep != nil {
		registerSweepTool(srv, tools)
	}
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// textResult marshals a response into a single text content block.
func textResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return errResult(fmt.Errorf("marshal: %w", err))
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil
}

// errResult reports a tool-level failure without failing the call itself.
func errResult(err error) (*mcp.CallToolResult, error) {
	var res mcp.CallToolResult
	res.SetError(errors.New(err.Error()))
	return &res, nil
}

// --- process ---

type processReq struct {
	Path string `json:"path"`
}

func registerProcessTool(srv *mcp.Server, tools MCPTools) {
	tool := &mcp.Tool{
		Name:        "scribe_process",
		Description: "Process one input file end to end: extract, render, copy asset, write the page.",
		InputSchema: inputSchema(map[string]any{
			"path": map[string]any{"type": "string", "description": "File path to process"},
		}, []string{"path"}),
	}

	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var r processReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return errResult(fmt.Errorf("invalid arguments: %w", err))
		}
		res, err := tools.Process(ctx, r.Path)
		if err != nil {
			return errResult(err)
		}
		return textResult(map[string]any{
			"type":   string(res.Type),
			"title":  res.Title,
			"output": res.OutputPath,
			"asset":  res.AssetPath,
		})
	})
}

// --- detect ---

type detectReq struct {
	Path string `json:"path"`
}

func registerDetectTool(srv *mcp.Server, tools MCPTools) {
	tool := &mcp.Tool{
		Name:        "scribe_detect",
		Description: "Detect the document type of a file from its extension.",
		InputSchema: inputSchema(map[string]any{
			"path": map[string]any{"type": "string", "description": "File path to detect"},
		}, []string{"path"}),
	}

	srv.AddTool(tool, func(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var r detectReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return errResult(fmt.Errorf("invalid arguments: %w", err))
		}
		t, ok := tools.Registry.DetectType(r.Path)
		if !ok {
			return errResult(fmt.Errorf("unsupported type: %s", r.Path))
		}
		return textResult(map[string]any{"type": string(t)})
	})
}

// --- formats ---

func registerFormatsTool(srv *mcp.Server, tools MCPTools) {
	tool := &mcp.Tool{
		Name:        "scribe_formats",
		Description: "List supported document types and file extensions.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	srv.AddTool(tool, func(_ context.Context, _ *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		types := tools.Registry.Types()
		names := make([]string, 0, len(types))
		for _, t := range types {
			names = append(names, string(t))
		}
		return textResult(map[string]any{
			"types":      names,
			"extensions": tools.Registry.SupportedExtensions(),
		})
	})
}

// --- sweep ---

type sweepReq struct {
	Root string `json:"root"`
}

func registerSweepTool(srv *mcp.Server, tools MCPTools) {
	tool := &mcp.Tool{
		Name:        "scribe_sweep",
		Description: "Process every supported file under a folder once.",
		InputSchema: inputSchema(map[string]any{
			"root": map[string]any{"type": "string", "description": "Folder to sweep (defaults to the inbox)"},
		}, nil),
	}

	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var r sweepReq
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
				return errResult(fmt.Errorf("invalid arguments: %w", err))
			}
		}
		root := r.Root
		if root == "" {
			root = tools.DefaultRoot
		}
		processed, failed := tools.Sweep(ctx, root)
		return textResult(map[string]any{"processed": processed, "failed": failed})
	})
}
