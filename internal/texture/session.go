package texture

import (
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/chiller-mcp/internal/config"
)

// Result is the per-frame output of a Session.
type Result struct {
	State        State    `json:"state"`
	TexturePower float64  `json:"texture_power"`
	Intensity    *float64 `json:"intensity,omitempty"` // nil while calibrating
	Baseline     float64  `json:"baseline"`

	DetectionCount     int `json:"detection_count"`
	CalibrationSamples int `json:"calibration_samples"`
	BaselineFrames     int `json:"baseline_frames"`

	FrameCount int     `json:"frame_count"`
	FPS        float64 `json:"fps"`
}

// Notifier receives every detecting frame. Implementations run on the
// session's goroutine and should return quickly.
type Notifier interface {
	Detected(sessionID string, r Result)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(sessionID string, r Result)

// Detected calls f(sessionID, r).
func (f NotifierFunc) Detected(sessionID string, r Result) { f(sessionID, r) }

// Session is one monitoring run: calibration, then detection, over a stream
// of ROI frames. All per-frame buffers are allocated once in NewSession.
//
// Not safe for concurrent use; call Process from a single goroutine.
type Session struct {
	id       string
	cfg      *config.Config
	logger   logrus.FieldLogger
	notifier Notifier

	enhancer   *Enhancer
	analyzer   *Analyzer
	calibrator *Calibrator
	detector   *Detector
	history    *History
	enhanced   *Frame

	frameCount int
	lastFrame  time.Time
	fps        float64
	last       Result
}

// NewSession builds a Session from cfg. A nil cfg uses the defaults and a
// nil logger discards output.
func NewSession(id string, cfg *config.Config, logger logrus.FieldLogger) (*Session, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	cfg = cfg.Clone()

	s := &Session{
		id:         id,
		cfg:        cfg,
		logger:     logger.WithField("session", id),
		enhancer:   NewEnhancer(cfg.TileSize, cfg.CLAHEClip),
		analyzer:   NewAnalyzer(cfg.ROIWidth, cfg.ROIHeight, cfg.FreqMinMM, cfg.FreqMaxMM, cfg.PixelSizeMM, cfg.NoiseFloor),
		calibrator: NewCalibrator(cfg.BaselineFrames),
		detector:   NewDetector(cfg.DetectionThreshold),
		history:    NewHistory(cfg.MaxHistory),
		enhanced:   NewFrame(cfg.ROIWidth, cfg.ROIHeight),
	}
	s.last = s.idleResult()
	return s, nil
}

// SetNotifier installs the collaborator told about detecting frames.
func (s *Session) SetNotifier(n Notifier) { s.notifier = n }

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Config returns a copy of the session configuration.
func (s *Session) Config() *config.Config { return s.cfg.Clone() }

// Process runs one ROI frame through enhancement, spectral analysis and
// classification. t is the capture time, used only for the FPS estimate;
// a zero t leaves the estimate unchanged.
func (s *Session) Process(f *Frame, t time.Time) (Result, error) {
	if err := f.Check(); err != nil {
		return Result{}, err
	}
	if f.Width != s.cfg.ROIWidth || f.Height != s.cfg.ROIHeight {
		return Result{}, fmt.Errorf("%w: got %dx%d, session expects %dx%d",
			ErrFrameShape, f.Width, f.Height, s.cfg.ROIWidth, s.cfg.ROIHeight)
	}

	s.enhancer.Enhance(s.enhanced, f)
	power := s.analyzer.AnalyzeROI(f, s.enhanced).TexturePower
	return s.ProcessPower(power, t), nil
}

// ProcessPower routes one texture power reading: to the calibrator until the
// baseline is fixed, then to the detector and history.
func (s *Session) ProcessPower(power float64, t time.Time) Result {
	s.frameCount++
	if !t.IsZero() {
		if !s.lastFrame.IsZero() && t.After(s.lastFrame) {
			s.fps = 1 / t.Sub(s.lastFrame).Seconds()
		}
		s.lastFrame = t
	}

	r := Result{
		TexturePower:   power,
		BaselineFrames: s.calibrator.Window(),
		FrameCount:     s.frameCount,
		FPS:            s.fps,
	}

	if !s.calibrator.Calibrated() {
		if s.calibrator.Push(power) {
			s.logger.WithField("baseline", s.calibrator.Baseline()).Info("baseline established")
		}
		r.State = StateCalibrating
	} else {
		state, intensity := s.detector.Classify(power, s.calibrator.Baseline())
		s.history.Push(intensity)
		r.State = state
		r.Intensity = &intensity
	}

	r.Baseline = s.calibrator.Baseline()
	r.CalibrationSamples = s.calibrator.Samples()
	r.DetectionCount = s.detector.Count()
	s.last = r

	if r.State == StateDetecting {
		s.logger.WithFields(logrus.Fields{
			"intensity":  *r.Intensity,
			"detections": r.DetectionCount,
		}).Debug("goosebumps detected")
		if s.notifier != nil {
			s.notifier.Detected(s.id, r)
		}
	}
	return r
}

// Reset returns the session to its initial calibrating state, as on a
// monitoring stop or restart.
func (s *Session) Reset() {
	s.calibrator.Reset()
	s.detector.Reset()
	s.history.Reset()
	s.frameCount = 0
	s.lastFrame = time.Time{}
	s.fps = 0
	s.last = s.idleResult()
	s.logger.Debug("session reset")
}

// Last returns the result of the most recent frame.
func (s *Session) Last() Result { return s.last }

// Enhanced returns the contrast-enhanced ROI of the most recent frame. The
// frame is reused by the next Process call.
func (s *Session) Enhanced() *Frame { return s.enhanced }

// Calibrated reports whether the baseline has been fixed.
func (s *Session) Calibrated() bool { return s.calibrator.Calibrated() }

// Baseline returns the baseline texture power, or 0 while calibrating.
func (s *Session) Baseline() float64 { return s.calibrator.Baseline() }

// History returns the recorded intensities, oldest first.
func (s *Session) History() []float64 { return s.history.Values() }

// HistoryCap returns the history capacity.
func (s *Session) HistoryCap() int { return s.history.Cap() }

// Threshold returns the detection threshold in percent.
func (s *Session) Threshold() float64 { return s.detector.Threshold() }

func (s *Session) idleResult() Result {
	return Result{State: StateCalibrating, BaselineFrames: s.calibrator.Window()}
}
