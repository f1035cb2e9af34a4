package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/chiller-mcp/internal/config"
	"github.com/ironsheep/chiller-mcp/internal/imaging"
	"github.com/ironsheep/chiller-mcp/internal/texture"
)

// replayFPS spaces recorded frames in time so the FPS field is meaningful.
const replayFPS = 30

type replayLine struct {
	Frame string `json:"frame"`
	texture.Result
}

// runReplay feeds recorded frames through one session in order and writes
// one JSON result per line to out.
func runReplay(args []string, out io.Writer, logger *logrus.Logger) error {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	configPath := fs.String("config", os.Getenv("CHILLER_CONFIG"), "pipeline configuration file")
	dumpDir := fs.String("dump", "", "directory for enhanced ROI PNGs")
	if err := fs.Parse(args); err != nil {
		return err
	}
	frames := fs.Args()
	if len(frames) == 0 {
		return errors.New("replay: no frames given")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *dumpDir != "" {
		if err := os.MkdirAll(*dumpDir, 0o755); err != nil {
			return fmt.Errorf("failed to create dump dir: %w", err)
		}
	}

	sess, err := texture.NewSession(uuid.NewString(), cfg, logger)
	if err != nil {
		return err
	}
	sess.SetNotifier(texture.NotifierFunc(func(id string, r texture.Result) {
		logger.WithFields(logrus.Fields{
			"frame":     r.FrameCount,
			"intensity": *r.Intensity,
		}).Info("goosebumps detected")
	}))

	luma := texture.NewFrame(cfg.ROIWidth, cfg.ROIHeight)
	enc := json.NewEncoder(out)
	clock := time.Unix(0, 0)
	for i, path := range frames {
		img, err := imaging.Decode(path)
		if err != nil {
			return err
		}
		if err := imaging.ExtractROI(luma, img); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		clock = clock.Add(time.Second / replayFPS)
		r, err := sess.Process(luma, clock)
		if err != nil {
			return err
		}

		if *dumpDir != "" {
			name := fmt.Sprintf("%04d_%s.png", i, trimExt(filepath.Base(path)))
			if err := imaging.SaveFrame(filepath.Join(*dumpDir, name), sess.Enhanced()); err != nil {
				return err
			}
		}
		if err := enc.Encode(replayLine{Frame: path, Result: r}); err != nil {
			return err
		}
	}
	return nil
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}
