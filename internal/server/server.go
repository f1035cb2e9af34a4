package server

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/chiller-mcp/internal/config"
	"github.com/ironsheep/chiller-mcp/internal/imaging"
	"github.com/ironsheep/chiller-mcp/internal/texture"
)

// Version is reported in the initialize handshake. main overrides it from ldflags.
var Version = "0.1.0"

// ErrUnknownSession is returned for tool calls naming a session that was
// never started or has been stopped.
var ErrUnknownSession = errors.New("unknown session")

// Server handles MCP protocol communication and owns the monitoring sessions.
type Server struct {
	cfg    *config.Config
	logger *logrus.Logger
	cache  *imaging.ImageCache

	mu       sync.Mutex
	sessions map[string]*sessionEntry

	outMu sync.Mutex
	out   *json.Encoder
}

// sessionEntry serializes frames of one session and holds its reusable
// luminance buffer.
type sessionEntry struct {
	mu      sync.Mutex
	session *texture.Session
	luma    *texture.Frame
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// MCPNotification represents an outgoing notification (no ID)
type MCPNotification struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// New creates a server that starts sessions from cfg. A nil cfg uses the
// defaults and a nil logger discards output.
func New(cfg *config.Config, logger *logrus.Logger) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Server{
		cfg:      cfg,
		logger:   logger,
		cache:    imaging.NewImageCache(),
		sessions: make(map[string]*sessionEntry),
	}
}

// Run starts the MCP server, reading from stdin and writing to stdout
func (s *Server) Run() error {
	return s.Serve(os.Stdin, os.Stdout)
}

// Serve reads newline-delimited JSON-RPC requests from r and writes
// responses and notifications to w until r is exhausted.
func (s *Server) Serve(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	s.outMu.Lock()
	s.out = json.NewEncoder(w)
	s.outMu.Unlock()

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.WithError(err).Warn("failed to parse request")
			continue
		}

		resp := s.handleRequest(&req)
		if resp != nil {
			s.write(resp)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}
	return nil
}

func (s *Server) write(v interface{}) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	if s.out == nil {
		return
	}
	if err := s.out.Encode(v); err != nil {
		s.logger.WithError(err).Error("failed to encode message")
	}
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	s.logger.WithField("method", req.Method).Debug("request")

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools":   map[string]interface{}{},
				"logging": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "chiller-mcp",
				"version": Version,
			},
		},
	}
}

// detectionNotice is the payload of a detection notification.
type detectionNotice struct {
	SessionID      string  `json:"session_id"`
	Intensity      float64 `json:"intensity"`
	TexturePower   float64 `json:"texture_power"`
	DetectionCount int     `json:"detection_count"`
	FrameCount     int     `json:"frame_count"`
}

// Detected implements texture.Notifier by pushing an MCP log message, the
// protocol's stand-in for the haptic alert of a handheld client.
func (s *Server) Detected(sessionID string, r texture.Result) {
	notice := detectionNotice{
		SessionID:      sessionID,
		TexturePower:   r.TexturePower,
		DetectionCount: r.DetectionCount,
		FrameCount:     r.FrameCount,
	}
	if r.Intensity != nil {
		notice.Intensity = *r.Intensity
	}
	s.write(&MCPNotification{
		JSONRPC: "2.0",
		Method:  "notifications/message",
		Params: map[string]interface{}{
			"level":  "info",
			"logger": "chiller",
			"data":   notice,
		},
	})
}

// startSession registers a new session built from cfg.
func (s *Server) startSession(cfg *config.Config) (*sessionEntry, error) {
	id := uuid.NewString()
	sess, err := texture.NewSession(id, cfg, s.logger)
	if err != nil {
		return nil, err
	}
	sess.SetNotifier(s)

	entry := &sessionEntry{
		session: sess,
		luma:    texture.NewFrame(cfg.ROIWidth, cfg.ROIHeight),
	}
	s.mu.Lock()
	s.sessions[id] = entry
	s.mu.Unlock()

	s.logger.WithField("session", id).Info("session started")
	return entry, nil
}

func (s *Server) lookupSession(id string) (*sessionEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSession, id)
	}
	return entry, nil
}

func (s *Server) stopSession(id string) (*sessionEntry, error) {
	s.mu.Lock()
	entry, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSession, id)
	}
	s.logger.WithField("session", id).Info("session stopped")
	return entry, nil
}

// SessionCount returns the number of active sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
