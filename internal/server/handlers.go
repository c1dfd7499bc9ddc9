package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ironsheep/dataset-curator/internal/audit"
	"github.com/ironsheep/dataset-curator/internal/config"
	"github.com/ironsheep/dataset-curator/internal/curate"
	"github.com/ironsheep/dataset-curator/internal/dataset"
	"github.com/ironsheep/dataset-curator/internal/detection"
	"github.com/ironsheep/dataset-curator/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "dataset_validate").
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
		s.logger.Warn("tool failed", "tool", params.Name, "error", err)
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
	case ToolDatasetValidate:
		return s.handleDatasetValidate(ctx, args)
	case ToolDatasetFilterSmall:
		return s.handleDatasetFilterSmall(ctx, args)
	case ToolDatasetCurate:
		return s.handleDatasetCurate(ctx, args)
	case ToolLabelInspect:
		return s.handleLabelInspect(args)
	case ToolImageDimensions:
		return s.handleImageDimensions(args)
	case ToolObjectCrop:
		return s.handleObjectCrop(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	resp := &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
		},
	}
	if data != "" {
		resp.Error.Data = data
	}
	return resp
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs strictly decodes tool arguments. Absent arguments decode as {}.
func decodeArgs(args json.RawMessage, v interface{}) error {
	trimmed := bytes.TrimSpace(args)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func requirePath(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%s is required", field)
	}
	return config.ExpandPath(value)
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// === Dataset Audit Handlers ===

type datasetValidateArgs struct {
	Dataset string   `json:"dataset"`
	MinSize *float64 `json:"min_size"`
	Output  string   `json:"output"`
}

type datasetValidateResult struct {
	*audit.Report
	Output string `json:"output,omitempty"`
	Copied int    `json:"copied,omitempty"`
}

func (s *Server) handleDatasetValidate(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a datasetValidateArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	root, err := requirePath("dataset", a.Dataset)
	if err != nil {
		return nil, err
	}
	taxonomy, err := dataset.LoadTaxonomy(root)
	if err != nil {
		return nil, err
	}

	v := &audit.Validator{
		MinArea:  floatOr(a.MinSize, audit.DefaultMinArea),
		Taxonomy: taxonomy,
		Prober:   s.cache,
		Logger:   s.logger,
	}
	report, err := v.Validate(ctx, root)
	s.trimCache()
	if err != nil {
		return nil, err
	}

	res := &datasetValidateResult{Report: report}
	if strings.TrimSpace(a.Output) != "" {
		out, err := config.ExpandPath(a.Output)
		if err != nil {
			return nil, err
		}
		copied, err := audit.CopyFlagged(report, root, out, s.logger)
		if err != nil {
			return nil, err
		}
		res.Output, res.Copied = out, copied
	}
	return res, nil
}

// trimCache drops every cached dimension once the cache outgrows its bound.
func (s *Server) trimCache() {
	if n := s.cache.Len(); n > s.maxCached {
		s.logger.Debug("clearing dimension cache", "entries", n, "limit", s.maxCached)
		s.cache.Clear()
	}
}

type datasetFilterArgs struct {
	Dataset   string   `json:"dataset"`
	Output    string   `json:"output"`
	Threshold *float64 `json:"threshold"`
}

func (s *Server) handleDatasetFilterSmall(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a datasetFilterArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	root, err := requirePath("dataset", a.Dataset)
	if err != nil {
		return nil, err
	}
	out, err := requirePath("output", a.Output)
	if err != nil {
		return nil, err
	}

	f := &audit.Filter{
		Threshold: floatOr(a.Threshold, audit.DefaultSmallThreshold),
		Logger:    s.logger,
	}
	return f.Run(ctx, root, out)
}

// === Curation Handler ===

type datasetCurateArgs struct {
	Config string `json:"config"`
	Seed   *int64 `json:"seed"`
}

func (s *Server) handleDatasetCurate(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a datasetCurateArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	path := strings.TrimSpace(a.Config)
	if path == "" {
		path = s.configPath
	}
	cfg, _, _, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if a.Seed != nil {
		if *a.Seed <= 0 {
			return nil, errors.New("seed must be positive")
		}
		cfg.Seed = *a.Seed
	}
	return curate.Run(ctx, cfg, curate.Options{Logger: s.logger})
}

// === Single File Handlers ===

type labelInspectArgs struct {
	Path      string   `json:"path"`
	Image     string   `json:"image"`
	MinSize   *float64 `json:"min_size"`
	Threshold *float64 `json:"threshold"`
}

type inspectedBox struct {
	detection.BoundingBox
	AbsoluteWidth     *float64 `json:"absolute_width,omitempty"`
	AbsoluteHeight    *float64 `json:"absolute_height,omitempty"`
	SmallByArea       *bool    `json:"small_by_area,omitempty"`
	SmallByDimensions bool     `json:"small_by_dimensions"`
}

type labelLineIssue struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

type labelInspectResult struct {
	Path   string              `json:"path"`
	Image  *imaging.Dimensions `json:"image,omitempty"`
	Boxes  []inspectedBox      `json:"boxes"`
	Errors []labelLineIssue    `json:"errors,omitempty"`
}

func (s *Server) handleLabelInspect(args json.RawMessage) (interface{}, error) {
	var a labelInspectArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	path, err := requirePath("path", a.Path)
	if err != nil {
		return nil, err
	}
	minArea := floatOr(a.MinSize, audit.DefaultMinArea)
	threshold := floatOr(a.Threshold, audit.DefaultSmallThreshold)

	boxes, bad, err := detection.ReadLabelFile(path)
	if err != nil {
		return nil, err
	}

	res := &labelInspectResult{Path: path, Boxes: make([]inspectedBox, 0, len(boxes))}
	if strings.TrimSpace(a.Image) != "" {
		imagePath, err := config.ExpandPath(a.Image)
		if err != nil {
			return nil, err
		}
		dims, err := s.cache.Probe(imagePath)
		if err != nil {
			return nil, err
		}
		res.Image = &dims
	}

	for _, b := range boxes {
		ib := inspectedBox{
			BoundingBox:       b,
			SmallByDimensions: detection.SmallByDimensions(b, threshold),
		}
		if res.Image != nil {
			w, h := b.AbsoluteSize(res.Image.Width, res.Image.Height)
			small := detection.SmallByArea(b, res.Image.Width, res.Image.Height, minArea)
			ib.AbsoluteWidth, ib.AbsoluteHeight, ib.SmallByArea = &w, &h, &small
		}
		res.Boxes = append(res.Boxes, ib)
	}
	for _, le := range bad {
		res.Errors = append(res.Errors, labelLineIssue{Line: le.Line, Reason: le.Err.Error()})
	}
	return res, nil
}

type imageDimensionsArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageDimensionsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	path, err := requirePath("path", a.Path)
	if err != nil {
		return nil, err
	}
	return s.cache.Probe(path)
}

type objectCropArgs struct {
	Image   string   `json:"image"`
	Label   string   `json:"label"`
	Index   int      `json:"index"`
	Padding *float64 `json:"padding"`
	Scale   *float64 `json:"scale"`
}

type objectCropResult struct {
	*imaging.CropResult
	Box detection.BoundingBox `json:"box"`
}

const (
	defaultCropPadding = 0.5
	defaultCropScale   = 4.0
)

func (s *Server) handleObjectCrop(args json.RawMessage) (interface{}, error) {
	var a objectCropArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	imagePath, err := requirePath("image", a.Image)
	if err != nil {
		return nil, err
	}
	labelPath, err := requirePath("label", a.Label)
	if err != nil {
		return nil, err
	}

	boxes, _, err := detection.ReadLabelFile(labelPath)
	if err != nil {
		return nil, err
	}
	if a.Index < 0 || a.Index >= len(boxes) {
		return nil, fmt.Errorf("index %d out of range: label has %d boxes", a.Index, len(boxes))
	}

	box := boxes[a.Index]
	crop, err := imaging.CropBoxFile(imagePath, box,
		floatOr(a.Padding, defaultCropPadding), floatOr(a.Scale, defaultCropScale))
	if err != nil {
		return nil, err
	}
	return &objectCropResult{CropResult: crop, Box: box}, nil
}
