package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/chiller-mcp/internal/config"
	"github.com/ironsheep/chiller-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("chiller-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printUsage()
			return
		case "replay":
			logger := initLogger(os.Getenv("CHILLER_LOG_LEVEL"))
			if err := runReplay(os.Args[2:], os.Stdout, logger); err != nil {
				logger.WithError(err).Error("replay failed")
				os.Exit(1)
			}
			return
		}
	}

	// stdout is reserved for the MCP protocol
	logger := initLogger(os.Getenv("CHILLER_LOG_LEVEL"))
	logger.WithFields(logrus.Fields{
		"version": Version,
		"built":   BuildTime,
		"commit":  GitCommit,
	}).Debug("chiller MCP server starting")

	cfg, err := config.Load(os.Getenv("CHILLER_CONFIG"))
	if err != nil {
		logger.WithError(err).Fatal("failed to load config")
	}

	if Version != "dev" {
		server.Version = Version
	}
	srv := server.New(cfg, logger)
	if err := srv.Run(); err != nil {
		logger.WithError(err).Fatal("server error")
	}
}

func printUsage() {
	fmt.Println("chiller-mcp - MCP server for goosebump detection")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  chiller-mcp [options]")
	fmt.Println("  chiller-mcp replay [--config FILE] [--dump DIR] FRAME...")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Replay runs recorded frames through one session and prints a JSON")
	fmt.Println("result per frame. --dump writes each enhanced ROI as PNG into DIR.")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  CHILLER_CONFIG=path.json      Pipeline configuration (defaults if unset)")
	fmt.Println("  CHILLER_LOG_LEVEL=debug       Log level: debug, info, warn, error")
	fmt.Println()
	fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
	fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
}

// initLogger builds the process logger. Output goes to stderr because stdout
// carries protocol messages or replay results.
func initLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.WarnLevel
	}
	logger.SetLevel(lvl)

	if lvl >= logrus.DebugLevel {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}
	return logger
}
