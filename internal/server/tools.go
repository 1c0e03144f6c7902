package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// bufferSchema describes a Buffer object argument.
func bufferSchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": description + ` as {"type": "Buffer", "data": "<base64>"}`,
		"properties": map[string]interface{}{
			"type": map[string]interface{}{"type": "string", "enum": []string{"Buffer"}},
			"data": map[string]interface{}{"type": "string", "description": "Base64 encoded bytes"},
		},
		"required": []string{"type", "data"},
	}
}

// sourceProperties are accepted by every tool that reads an image.
func sourceProperties() map[string]interface{} {
	return map[string]interface{}{
		"srcData": bufferSchema("Source image bytes"),
		"srcPath": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to the source image. Used instead of srcData",
		},
		"srcFormat": map[string]interface{}{
			"type":        "string",
			"description": "Source format hint (e.g. TGA), bypassing detection",
		},
		"maxMemory": map[string]interface{}{
			"type":        "integer",
			"description": "Memory ceiling in bytes for any single canvas",
		},
		"ignoreWarnings": map[string]interface{}{
			"type":        "boolean",
			"description": "Tolerate non-fatal read problems such as malformed Exif",
			"default":     false,
		},
		"debug": map[string]interface{}{
			"type":        "boolean",
			"description": "Log this call at debug level",
			"default":     false,
		},
	}
}

// outputProperties are accepted by every tool that writes an image.
func outputProperties() map[string]interface{} {
	return map[string]interface{}{
		"format": map[string]interface{}{
			"type":        "string",
			"description": "Output format: PNG, JPEG, GIF, BMP, TIFF or TGA. Defaults to the source format",
		},
		"quality": map[string]interface{}{
			"type":        "integer",
			"description": "Output quality 1-100",
		},
		"dstPath": map[string]interface{}{
			"type":        "string",
			"description": "Write the output to this path instead of returning it as a Buffer object",
		},
	}
}

func withProperties(sets ...map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	for _, set := range sets {
		for k, v := range set {
			out[k] = v
		}
	}
	return out
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "magick_convert",
			Description: "Convert an image: resize, crop, rotate, flip, trim, blur, adjust brightness/contrast/opacity, change colorspace, flatten and re-encode. Returns the output image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(sourceProperties(), outputProperties(), map[string]interface{}{
					"width":  map[string]interface{}{"type": "integer", "description": "Target width. Omitted takes the source width"},
					"height": map[string]interface{}{"type": "integer", "description": "Target height. Omitted takes the source height"},
					"resizeStyle": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"aspectfill", "aspectfit", "fill", "crop", "aspectwithbg"},
						"description": "How the image is fitted into width x height",
						"default":     "aspectfill",
					},
					"gravity": map[string]interface{}{
						"type":        "string",
						"description": "Crop or padding anchor: Center, North, South, East, West, NorthEast, NorthWest, SouthEast, SouthWest or None",
						"default":     "Center",
					},
					"cropMode": map[string]interface{}{
						"type":        "string",
						"description": "Crop anchor as top-left ... bottom-right, or none. Overrides gravity",
					},
					"xoffset": map[string]interface{}{"type": "integer", "description": "Left edge of the crop style's region"},
					"yoffset": map[string]interface{}{"type": "integer", "description": "Top edge of the crop style's region"},
					"filter": map[string]interface{}{
						"type":        "string",
						"description": "Resampling filter (Lanczos, Mitchell, Catrom, Box, Point, ...)",
						"default":     "Lanczos",
					},
					"density":      map[string]interface{}{"type": "integer", "description": "Output resolution in DPI"},
					"blur":         map[string]interface{}{"type": "number", "description": "Gaussian blur sigma"},
					"brightness":   map[string]interface{}{"type": "number", "description": "Brightness shift, -100 to 100"},
					"contrast":     map[string]interface{}{"type": "number", "description": "Contrast shift, -100 to 100"},
					"opacity":      map[string]interface{}{"type": "number", "description": "Opacity percentage, 0 to 100"},
					"opacityColor": map[string]interface{}{"type": "string", "description": "Tint applied at the opacity strength"},
					"rotate":       map[string]interface{}{"type": "number", "description": "Clockwise rotation in degrees"},
					"flip":         map[string]interface{}{"type": "boolean", "description": "Mirror top to bottom"},
					"background":   map[string]interface{}{"type": "string", "description": "Background color for padding, rotation and flattening"},
					"colorspace":   map[string]interface{}{"type": "string", "description": "Output colorspace: sRGB, RGB or Gray"},
					"strip":        map[string]interface{}{"type": "boolean", "description": "Drop metadata"},
					"trim":         map[string]interface{}{"type": "boolean", "description": "Remove uniform borders"},
					"trimFuzz":     map[string]interface{}{"type": "number", "description": "Trim color tolerance, 0 to 1"},
					"autoOrient":   map[string]interface{}{"type": "boolean", "description": "Apply the Exif orientation"},
				}),
			},
		},
		{
			Name:        "magick_identify",
			Description: "Describe an image: width, height, depth, format, colorspace, density and Exif orientation.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": sourceProperties(),
			},
		},
		{
			Name:        "magick_composite",
			Description: "Draw an overlay image onto a source image at a gravity anchor or at explicit offsets.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(sourceProperties(), outputProperties(), map[string]interface{}{
					"compositeData": bufferSchema("Overlay image bytes"),
					"compositePath": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the overlay image. Used instead of compositeData",
					},
					"gravity": map[string]interface{}{
						"type":        "string",
						"description": "Overlay anchor such as CenterGravity or SouthEast. Omitted uses the offsets",
					},
					"xoffset": map[string]interface{}{"type": "integer", "description": "Overlay left edge when no gravity is given"},
					"yoffset": map[string]interface{}{"type": "integer", "description": "Overlay top edge when no gravity is given"},
				}),
			},
		},
		{
			Name:        "magick_quantize_colors",
			Description: "Return the most prevalent colors of an image, each with r, g, b and hex.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(sourceProperties(), map[string]interface{}{
					"colors": map[string]interface{}{
						"type":        "integer",
						"description": "Number of colors to return (default 5)",
						"default":     5,
					},
				}),
			},
		},
		{
			Name:        "magick_get_const_pixels",
			Description: "Read a rectangular region of pixels as red, green, blue and opacity on the 16-bit quantum scale.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(sourceProperties(), map[string]interface{}{
					"x":       map[string]interface{}{"type": "integer", "description": "Region left edge (0-based)"},
					"y":       map[string]interface{}{"type": "integer", "description": "Region top edge (0-based)"},
					"columns": map[string]interface{}{"type": "integer", "description": "Region width (default 1)", "default": 1},
					"rows":    map[string]interface{}{"type": "integer", "description": "Region height (default 1)", "default": 1},
				}),
			},
		},
		{
			Name:        "magick_quantum_depth",
			Description: "Report the per-channel precision of pixel values.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "magick_version",
			Description: "Report the image engine version.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
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
