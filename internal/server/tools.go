package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// Tool names.
const (
	ToolDatasetValidate    = "dataset_validate"
	ToolDatasetFilterSmall = "dataset_filter_small"
	ToolDatasetCurate      = "dataset_curate"
	ToolLabelInspect       = "label_inspect"
	ToolImageDimensions    = "image_dimensions"
	ToolObjectCrop         = "object_crop"
)

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Dataset audits
		{
			Name:        ToolDatasetValidate,
			Description: "Scan a YOLO dataset for images without a label file and for objects whose area is below a fraction of the image area. Reads only; optionally copies flagged images into an output directory.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"dataset": map[string]interface{}{
						"type":        "string",
						"description": "Dataset root containing train/val/test or a flat images/labels layout",
					},
					"min_size": map[string]interface{}{
						"type":        "number",
						"description": "Minimum object area as a fraction of the image area. Default 0.02",
						"default":     0.02,
						"minimum":     0,
						"maximum":     1,
					},
					"output": map[string]interface{}{
						"type":        "string",
						"description": "Optional directory to copy flagged images into (missing_annotations/, small_objects/)",
					},
				},
				"required": []string{"dataset"},
			},
		},
		{
			Name:        ToolDatasetFilterSmall,
			Description: "Copy every image/label pair containing at least one object smaller than the threshold in both width and height into a new dataset with the same split layout.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"dataset": map[string]interface{}{
						"type":        "string",
						"description": "Dataset root to read from",
					},
					"output": map[string]interface{}{
						"type":        "string",
						"description": "Directory to write the filtered dataset into",
					},
					"threshold": map[string]interface{}{
						"type":        "number",
						"description": "Relative width and height below which an object counts as small. Default 0.05",
						"default":     0.05,
						"maximum":     1,
					},
				},
				"required": []string{"dataset", "output"},
			},
		},

		// Curation
		{
			Name:        ToolDatasetCurate,
			Description: "Run a full curation pass: collect pairs from the configured sources, drop duplicate images, split train/val/test, resize, and write data.yaml into a new timestamped directory.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"config": map[string]interface{}{
						"type":        "string",
						"description": "Path to a curator TOML config. Defaults to the server's config search",
					},
					"seed": map[string]interface{}{
						"type":        "integer",
						"description": "Optional shuffle seed overriding the config",
						"minimum":     1,
					},
				},
			},
		},

		// Single files
		{
			Name:        ToolLabelInspect,
			Description: "Parse a YOLO label file and report each box. When an image path is given, boxes get absolute pixel sizes and both small-object checks.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the label (.txt) file",
					},
					"image": map[string]interface{}{
						"type":        "string",
						"description": "Optional path to the matching image",
					},
					"min_size": map[string]interface{}{
						"type":        "number",
						"description": "Area fraction used for the area check. Default 0.02",
						"default":     0.02,
					},
					"threshold": map[string]interface{}{
						"type":        "number",
						"description": "Relative size used for the width-and-height check. Default 0.05",
						"default":     0.05,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        ToolImageDimensions,
			Description: "Get the width, height, and format of an image file without decoding its pixels.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        ToolObjectCrop,
			Description: "Crop one labeled object out of its image and return it as a base64 PNG, scaled up for review. Useful for checking objects flagged as small.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"image": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"label": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the matching label (.txt) file",
					},
					"index": map[string]interface{}{
						"type":        "integer",
						"description": "0-based index of the box among the well-formed lines of the label file. Default 0",
						"default":     0,
						"minimum":     0,
					},
					"padding": map[string]interface{}{
						"type":        "number",
						"description": "Context added on each side, as a fraction of the box size. Default 0.5",
						"default":     0.5,
						"minimum":     0,
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Scale factor for the output. Default 4",
						"default":     4.0,
					},
				},
				"required": []string{"image", "label"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
