package server

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ironsheep/chiller-mcp/internal/config"
	"github.com/ironsheep/chiller-mcp/internal/imaging"
	"github.com/ironsheep/chiller-mcp/internal/texture"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "chiller_session_start").
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
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return s.toolError(req.ID, params.Name, err)
	}
	text, err := marshalResult(result)
	if err != nil {
		return s.toolError(req.ID, params.Name, err)
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": text,
				},
			},
		},
	}
}

func (s *Server) toolError(id interface{}, tool string, err error) *MCPResponse {
	s.logger.WithError(err).WithField("tool", tool).Debug("tool failed")
	return s.errorResponse(id, -32000, "Tool execution failed", err.Error())
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Monitoring sessions
	case "chiller_session_start":
		return s.handleSessionStart(args)
	case "chiller_session_frame":
		return s.handleSessionFrame(args)
	case "chiller_session_power":
		return s.handleSessionPower(args)
	case "chiller_session_status":
		return s.handleSessionStatus(args)
	case "chiller_session_history":
		return s.handleSessionHistory(args)
	case "chiller_session_reset":
		return s.handleSessionReset(args)
	case "chiller_session_stop":
		return s.handleSessionStop(args)

	// Stateless frame analysis
	case "chiller_analyze_frame":
		return s.handleAnalyzeFrame(args)
	case "chiller_enhance_roi":
		return s.handleEnhanceROI(args)
	case "chiller_frame_info":
		return s.handleFrameInfo(args)

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

// marshalResult converts a tool result to a pretty-printed JSON string.
func marshalResult(v interface{}) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}
	return string(b), nil
}

// === Session Handlers ===

type sessionStartArgs struct {
	BaselineFrames     *int     `json:"baseline_frames"`
	DetectionThreshold *float64 `json:"detection_threshold"`
}

type sessionStartResult struct {
	SessionID string         `json:"session_id"`
	Config    *config.Config `json:"config"`
}

func (s *Server) handleSessionStart(args json.RawMessage) (interface{}, error) {
	var a sessionStartArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	cfg := s.cfg.Clone()
	if a.BaselineFrames != nil {
		cfg.BaselineFrames = *a.BaselineFrames
	}
	if a.DetectionThreshold != nil {
		cfg.DetectionThreshold = *a.DetectionThreshold
	}

	entry, err := s.startSession(cfg)
	if err != nil {
		return nil, err
	}
	return &sessionStartResult{
		SessionID: entry.session.ID(),
		Config:    entry.session.Config(),
	}, nil
}

type sessionArgs struct {
	SessionID string `json:"session_id"`
}

type sessionFrameArgs struct {
	SessionID string `json:"session_id"`
	Path      string `json:"path"`
}

func (s *Server) handleSessionFrame(args json.RawMessage) (interface{}, error) {
	var a sessionFrameArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	entry, err := s.lookupSession(a.SessionID)
	if err != nil {
		return nil, err
	}

	// Frames are a stream; caching them would only grow memory.
	img, err := imaging.Decode(a.Path)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if err := imaging.ExtractROI(entry.luma, img); err != nil {
		return nil, err
	}
	r, err := entry.session.Process(entry.luma, time.Now())
	if err != nil {
		return nil, err
	}
	return &r, nil
}

type sessionPowerArgs struct {
	SessionID string   `json:"session_id"`
	Power     *float64 `json:"power"`
}

func (s *Server) handleSessionPower(args json.RawMessage) (interface{}, error) {
	var a sessionPowerArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Power == nil {
		return nil, fmt.Errorf("power is required")
	}
	if *a.Power < 0 {
		return nil, fmt.Errorf("power must not be negative, got %g", *a.Power)
	}
	entry, err := s.lookupSession(a.SessionID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	r := entry.session.ProcessPower(*a.Power, time.Now())
	return &r, nil
}

// SessionStatus is the snapshot returned by chiller_session_status.
type SessionStatus struct {
	SessionID  string         `json:"session_id"`
	Last       texture.Result `json:"last"`
	Calibrated bool           `json:"calibrated"`
	Baseline   float64        `json:"baseline"`
	Threshold  float64        `json:"threshold"`
	HistoryLen int            `json:"history_len"`
}

func (s *Server) handleSessionStatus(args json.RawMessage) (interface{}, error) {
	var a sessionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	entry, err := s.lookupSession(a.SessionID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	sess := entry.session
	return &SessionStatus{
		SessionID:  sess.ID(),
		Last:       sess.Last(),
		Calibrated: sess.Calibrated(),
		Baseline:   sess.Baseline(),
		Threshold:  sess.Threshold(),
		HistoryLen: len(sess.History()),
	}, nil
}

// SessionHistory is the intensity series returned by chiller_session_history.
type SessionHistory struct {
	Values    []float64 `json:"values"`
	Capacity  int       `json:"capacity"`
	Threshold float64   `json:"threshold"`
}

func (s *Server) handleSessionHistory(args json.RawMessage) (interface{}, error) {
	var a sessionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	entry, err := s.lookupSession(a.SessionID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return &SessionHistory{
		Values:    entry.session.History(),
		Capacity:  entry.session.HistoryCap(),
		Threshold: entry.session.Threshold(),
	}, nil
}

func (s *Server) handleSessionReset(args json.RawMessage) (interface{}, error) {
	var a sessionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	entry, err := s.lookupSession(a.SessionID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.session.Reset()
	r := entry.session.Last()
	return &r, nil
}

func (s *Server) handleSessionStop(args json.RawMessage) (interface{}, error) {
	var a sessionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	entry, err := s.stopSession(a.SessionID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	final := entry.session.Last()
	entry.session.Reset()
	return &final, nil
}

// === Stateless Analysis Handlers ===

type pathArgs struct {
	Path string `json:"path"`
}

// loadROI loads a frame through the cache and returns its centred ROI both as
// colour pixels and as luminance.
func (s *Server) loadROI(args json.RawMessage) (*imaging.ROI, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.NewROI(img, s.cfg.ROIWidth, s.cfg.ROIHeight)
}

func (s *Server) handleAnalyzeFrame(args json.RawMessage) (interface{}, error) {
	roi, err := s.loadROI(args)
	if err != nil {
		return nil, err
	}
	c := s.cfg
	enhanced := texture.NewFrame(c.ROIWidth, c.ROIHeight)
	texture.NewEnhancer(c.TileSize, c.CLAHEClip).Enhance(enhanced, roi.Luma)
	an := texture.NewAnalyzer(c.ROIWidth, c.ROIHeight, c.FreqMinMM, c.FreqMaxMM, c.PixelSizeMM, c.NoiseFloor)
	res := an.AnalyzeROI(roi.Luma, enhanced)
	return &res, nil
}

func (s *Server) handleEnhanceROI(args json.RawMessage) (interface{}, error) {
	roi, err := s.loadROI(args)
	if err != nil {
		return nil, err
	}
	c := s.cfg
	enhanced := texture.NewFrame(c.ROIWidth, c.ROIHeight)
	texture.NewEnhancer(c.TileSize, c.CLAHEClip).Enhance(enhanced, roi.Luma)
	return imaging.EncodeFramePNG(enhanced)
}

// FrameReport combines a frame's description with its ROI lighting.
type FrameReport struct {
	*imaging.FrameInfo
	Lighting *imaging.LightingResult `json:"lighting,omitempty"`
}

func (s *Server) handleFrameInfo(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	info, err := imaging.LoadFrameInfo(s.cache, a.Path, s.cfg.ROIWidth, s.cfg.ROIHeight)
	if err != nil {
		return nil, err
	}
	report := &FrameReport{FrameInfo: info}
	if !info.ROIFits {
		return report, nil
	}

	roi, err := s.loadROI(args)
	if err != nil {
		return nil, err
	}
	report.Lighting = imaging.SummarizeLighting(roi.Color, roi.Luma, s.cfg.NoiseFloor)
	return report, nil
}
