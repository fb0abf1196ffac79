package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/ironsheep/spot-analyzer/internal/config"
	"github.com/ironsheep/spot-analyzer/internal/imaging"
	"github.com/ironsheep/spot-analyzer/internal/logger"
	"github.com/ironsheep/spot-analyzer/internal/server"
	"github.com/ironsheep/spot-analyzer/internal/spots"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	mode := "serve"
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("spot-analyzer %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printUsage()
			return
		case "serve", "mcp":
			mode = os.Args[1]
		default:
			fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
			printUsage()
			os.Exit(2)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "spot-analyzer: %v\n", err)
		os.Exit(1)
	}

	// Logs go to stderr; in mcp mode stdout carries the protocol.
	log, err := logger.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "spot-analyzer: %v\n", err)
		os.Exit(1)
	}

	if err := run(mode, cfg, log); err != nil {
		log.Fatal().Err(err).Str("mode", mode).Msg("server error")
	}
}

func run(mode string, cfg config.Config, log zerolog.Logger) error {
	log.Debug().
		Str("version", Version).
		Str("built", BuildTime).
		Str("commit", GitCommit).
		Str("mode", mode).
		Msg("spot-analyzer starting")

	annotation, err := imaging.ParseHexColor(cfg.AnnotationColor)
	if err != nil {
		return err
	}

	opts := spots.DefaultOptions()
	opts.MinAreaRatio = cfg.MinAreaRatio
	opts.AnnotationColor = annotation

	detector, err := spots.NewDetector(opts, log)
	if err != nil {
		return err
	}

	store, err := imaging.NewAnnotationStore(cfg.ImagesDir, cfg.JPEGQuality)
	if err != nil {
		return err
	}

	log.Info().
		Float64("min_area_ratio", opts.MinAreaRatio).
		Str("annotation_color", imaging.HexString(annotation)).
		Int("jpeg_quality", cfg.JPEGQuality).
		Str("images_dir", store.Dir()).
		Msg("detector configured")

	srv := server.New(detector, store, cfg, log)

	if mode == "mcp" {
		return srv.ServeMCP(os.Stdin, os.Stdout)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.ListenAndServe(ctx)
}

func printUsage() {
	fmt.Println("spot-analyzer - dark spot detection for photographs")
	fmt.Println()
	fmt.Println("Usage: spot-analyzer [serve|mcp] [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve            Run the HTTP API (default)")
	fmt.Println("  mcp              Speak MCP over stdin/stdout")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  SPOT_ANALYZER_CONFIG=path.toml       Optional TOML config file")
	fmt.Println("  SPOT_ANALYZER_ADDR=:8000             HTTP listen address")
	fmt.Println("  SPOT_ANALYZER_IMAGES_DIR=imagens     Annotated image directory")
	fmt.Println("  SPOT_ANALYZER_LOG_LEVEL=debug        Log level")
	fmt.Println("  SPOT_ANALYZER_LOG_FORMAT=json        console or json")
	fmt.Println("  SPOT_ANALYZER_MIN_AREA_RATIO=0.0005  Smallest spot, as a fraction of the image")
	fmt.Println("  SPOT_ANALYZER_ANNOTATION_COLOR=#FF0000")
	fmt.Println("  SPOT_ANALYZER_JPEG_QUALITY=95")
	fmt.Println("  SPOT_ANALYZER_MAX_UPLOAD_MB=20")
	fmt.Println("  SPOT_ANALYZER_SHUTDOWN_TIMEOUT=10s")
}
