// Package server implements the MCP (Model Context Protocol) server for
// goosebump monitoring.
//
// The server exposes the texture pipeline as JSON-RPC 2.0 tools. A client
// starts a session, feeds it camera frames (or precomputed texture power),
// and is told through notifications when goosebumps are detected.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses and notifications on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Monitoring sessions:
//   - chiller_session_start: Create a session, optionally overriding calibration and threshold
//   - chiller_session_frame: Analyze one camera frame
//   - chiller_session_power: Route a precomputed texture power
//   - chiller_session_status: Last result and calibration state
//   - chiller_session_history: Recent intensities for plotting
//   - chiller_session_reset: Recalibrate from scratch
//   - chiller_session_stop: Release the session
//
// Stateless frame analysis:
//   - chiller_analyze_frame: Texture power of one frame
//   - chiller_enhance_roi: Contrast-enhanced ROI as PNG
//   - chiller_frame_info: Dimensions, ROI placement and lighting
//
// # Notifications
//
// Every detecting frame produces a notifications/message with level "info",
// logger "chiller" and the session id, intensity and detection count as data.
// The notification is written before the tool response of the same frame.
//
// # Concurrency
//
// Requests are handled one at a time in arrival order. Sessions are kept in a
// mutex-guarded map and each session serializes its own frames.
package server
