package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/image-magick-go/internal/magick"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "magick_convert").
	Name string `json:"name"`

	// Arguments is the operation's option record as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// errUnknownTool is returned for a tools/call naming no tool.
var errUnknownTool = errors.New("unknown tool")

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Argument and configuration errors return code -32602; every other
// failure returns -32000. The error data is the operation's message.
func (s *Server) handleToolsCall(req *MCPRequest, log *logrus.Entry) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}
	log = log.WithField("tool", params.Name)

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		log.WithError(err).WithField("kind", magick.KindOf(err)).Info("tool failed")
		switch magick.KindOf(err) {
		case magick.ErrArgument.Error(), magick.ErrConfiguration.Error():
			return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}
	log.Debug("tool succeeded")

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

// executeTool dispatches tool execution to the facade.
//
// Each tool handler:
//  1. Decodes the arguments into an option record
//  2. Reads srcPath and compositePath into the record's buffers
//  3. Calls the facade operation
//  4. Writes byte output to dstPath, or returns it as a Buffer object
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "magick_convert":
		return s.handleBytes(magick.OpConvert, args, s.magick.Convert)
	case "magick_composite":
		return s.handleBytes(magick.OpComposite, args, s.magick.Composite)
	case "magick_identify":
		return handleRecord(s, magick.OpIdentify, args, s.magick.Identify)
	case "magick_quantize_colors":
		return handleRecord(s, magick.OpQuantizeColors, args, s.magick.QuantizeColors)
	case "magick_get_const_pixels":
		return handleRecord(s, magick.OpGetConstPixels, args, s.magick.GetConstPixels)
	case "magick_quantum_depth":
		return map[string]interface{}{"quantumDepth": s.magick.QuantumDepth()}, nil
	case "magick_version":
		return map[string]interface{}{"version": s.magick.Version()}, nil
	default:
		return nil, fmt.Errorf("%w: %s", errUnknownTool, name)
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

// pathKeys maps file arguments onto the buffer they fill.
var pathKeys = map[string]string{
	"srcPath":       "srcData",
	"compositePath": "compositeData",
}

// options decodes a tool's arguments into facade options. A nil or JSON
// null argument object yields the facade's "requires 1 argument" error.
func (s *Server) options(op string, args json.RawMessage) (*magick.Options, string, error) {
	var rec map[string]interface{}
	if len(args) > 0 {
		if err := json.Unmarshal(args, &rec); err != nil {
			return nil, "", &magick.Error{Op: op, Kind: magick.ErrArgument, Err: err}
		}
	}
	if rec == nil {
		_, err := magick.OptionsFromRecord(op, nil)
		return nil, "", err
	}

	for pathKey, bufKey := range pathKeys {
		p, ok := rec[pathKey].(string)
		if !ok {
			continue
		}
		delete(rec, pathKey)
		if p == "" {
			continue
		}
		data, err := afero.ReadFile(s.fs, p)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", pathKey, err)
		}
		rec[bufKey] = data
	}

	dst, _ := rec["dstPath"].(string)
	delete(rec, "dstPath")

	o, err := magick.OptionsFromRecord(op, rec)
	return o, dst, err
}

// bytesResult is the reply of operations that produce an image.
type bytesResult struct {
	Format   string `json:"format"`
	MimeType string `json:"mimeType"`
	Size     int    `json:"size"`
	// Path is set when the output was written to dstPath.
	Path string `json:"path,omitempty"`
	// Data is the output as a Buffer object when no dstPath was given, so it
	// can be passed back unchanged as another call's srcData.
	Data map[string]interface{} `json:"data,omitempty"`
}

func (s *Server) handleBytes(op string, args json.RawMessage, run func(*magick.Options) ([]byte, error)) (interface{}, error) {
	o, dst, err := s.options(op, args)
	if err != nil {
		return nil, err
	}
	out, err := run(o)
	if err != nil {
		return nil, err
	}

	format := magick.OutputFormat(o, out)
	res := bytesResult{Format: format, MimeType: magick.MimeType(format), Size: len(out)}
	if dst == "" {
		res.Data = magick.BufferRecord(out)
		return res, nil
	}
	if err := afero.WriteFile(s.fs, dst, out, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write dstPath: %w", err)
	}
	res.Path = dst
	return res, nil
}

func handleRecord[T any](s *Server, op string, args json.RawMessage, run func(*magick.Options) (T, error)) (interface{}, error) {
	o, _, err := s.options(op, args)
	if err != nil {
		return nil, err
	}
	return run(o)
}
