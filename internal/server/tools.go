package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func sessionIDSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"session_id": map[string]interface{}{
				"type":        "string",
				"description": "Session identifier returned by chiller_session_start",
			},
		},
		"required": []string{"session_id"},
	}
}

func pathSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"path": map[string]interface{}{
				"type":        "string",
				"description": "Absolute path to a PNG, JPEG or GIF camera frame",
			},
		},
		"required": []string{"path"},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Monitoring sessions
		{
			Name:        "chiller_session_start",
			Description: "Start a goosebump monitoring session. The first baseline_frames frames calibrate the resting skin texture; later frames are compared against that baseline. Returns the session id and effective configuration.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"baseline_frames": map[string]interface{}{
						"type":        "integer",
						"description": "Frames averaged into the baseline. Default 10",
						"minimum":     1,
					},
					"detection_threshold": map[string]interface{}{
						"type":        "number",
						"description": "Intensity in percent above baseline at which goosebumps are reported. Default 30",
						"minimum":     0,
					},
				},
			},
		},
		{
			Name:        "chiller_session_frame",
			Description: "Feed one camera frame to a session. The centred region of interest is converted to luminance, contrast-enhanced and analyzed. Returns the state (CALIBRATING, MONITORING or DETECTING), texture power, intensity and detection count.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": map[string]interface{}{
						"type":        "string",
						"description": "Session identifier returned by chiller_session_start",
					},
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the camera frame",
					},
				},
				"required": []string{"session_id", "path"},
			},
		},
		{
			Name:        "chiller_session_power",
			Description: "Feed a texture power computed elsewhere to a session, skipping image analysis. Useful for replaying recorded measurements.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": map[string]interface{}{
						"type":        "string",
						"description": "Session identifier returned by chiller_session_start",
					},
					"power": map[string]interface{}{
						"type":        "number",
						"description": "Texture power of one frame",
						"minimum":     0,
					},
				},
				"required": []string{"session_id", "power"},
			},
		},
		{
			Name:        "chiller_session_status",
			Description: "Report the most recent result of a session together with its calibration state and baseline.",
			InputSchema: sessionIDSchema(),
		},
		{
			Name:        "chiller_session_history",
			Description: "Return the recent intensity values of a session, oldest first, for plotting.",
			InputSchema: sessionIDSchema(),
		},
		{
			Name:        "chiller_session_reset",
			Description: "Restart a session: discard the baseline, detection count and history, and calibrate again.",
			InputSchema: sessionIDSchema(),
		},
		{
			Name:        "chiller_session_stop",
			Description: "Stop a session and release it. Returns its final result.",
			InputSchema: sessionIDSchema(),
		},

		// Stateless frame analysis
		{
			Name:        "chiller_analyze_frame",
			Description: "Compute the texture power of a single frame's region of interest without a session. Returns the power, the frequency band in spectrum bins and the luminance statistics.",
			InputSchema: pathSchema(),
		},
		{
			Name:        "chiller_enhance_roi",
			Description: "Return the contrast-enhanced luminance region of interest of a frame as base64-encoded PNG, exactly as the analyzer sees it.",
			InputSchema: pathSchema(),
		},
		{
			Name:        "chiller_frame_info",
			Description: "Describe a camera frame: dimensions, format, where the region of interest lies and whether it is lit well enough for texture analysis.",
			InputSchema: pathSchema(),
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
