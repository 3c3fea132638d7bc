package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/LdDl/motility-go/config"
	"github.com/LdDl/motility-go/pipeline"
)

// newRunID returns "<unix seconds>_<6 hex chars>"
func newRunID(now time.Time) string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return fmt.Sprintf("%d_%s", now.Unix(), hex[:6])
}

type analyzeFlags struct {
	input           string
	outputDir       string
	configPath      string
	weights         string
	conf            float64
	micronsPerPixel float64
	fps             float64
	dropVolumeUL    float64
	maxFrames       int
	skipFrames      int
	tracker         string
	noVideo         bool
}

// applyFlags overrides configuration with flags set on command line
func applyFlags(cmd *cobra.Command, flags *analyzeFlags, cfg *config.File) {
	changed := cmd.Flags().Changed
	if changed("weights") {
		cfg.Weights = &flags.weights
	}
	if changed("conf") {
		cfg.ConfidenceThreshold = &flags.conf
	}
	if changed("microns-per-pixel") {
		cfg.MicronsPerPixel = &flags.micronsPerPixel
	}
	if changed("fps") {
		cfg.FPS = &flags.fps
	}
	if changed("drop-volume-ul") {
		cfg.ReferenceVolumeUL = &flags.dropVolumeUL
	}
	if changed("max-frames") {
		cfg.MaxFrames = &flags.maxFrames
	}
	if changed("skip-frames") {
		cfg.SkipFrames = &flags.skipFrames
	}
	if changed("tracker") {
		cfg.Tracker = &flags.tracker
	}
	if flags.noVideo {
		annotate := false
		cfg.AnnotateVideo = &annotate
	}
}

func analyzeCmd() *cobra.Command {
	flags := &analyzeFlags{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a video or still image and write report artifacts",
		Long: `Runs detection, tracking, motility metrics and reporting over one input.

Artifacts (report.json, report.md, vel_hist.png, dashboard.html, report.db and
processed.mp4) are written into the output directory, reports/<run id> by default.

Examples:
  motility analyze --input sample.mp4
  motility analyze --input sample.mp4 --fps 30 --microns-per-pixel 0.8 --no-video
  motility analyze --input slide.png --config run.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Empty()
			if flags.configPath != "" {
				loaded, err := config.Load(flags.configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			applyFlags(cmd, flags, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			runID := newRunID(time.Now())
			outDir := flags.outputDir
			if outDir == "" {
				outDir = filepath.Join("reports", runID)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			bundle, err := pipeline.Run(ctx, flags.input, cfg.Calibration(), outDir,
				pipeline.WithConfig(cfg),
				pipeline.WithRunID(runID),
			)
			if err != nil {
				return err
			}
			printBundle(bundle)
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.input, "input", "i", "", "Input video or still image")
	cmd.Flags().StringVarP(&flags.outputDir, "output-dir", "o", "", "Output directory (default reports/<run id>)")
	cmd.Flags().StringVar(&flags.configPath, "config", "", "JSON run configuration")
	cmd.Flags().StringVar(&flags.weights, "weights", config.DefaultWeights, "YOLOv8 ONNX weights")
	cmd.Flags().Float64Var(&flags.conf, "conf", config.DefaultConfidenceThreshold, "Detector confidence threshold")
	cmd.Flags().Float64Var(&flags.micronsPerPixel, "microns-per-pixel", config.DefaultMicronsPerPixel, "Spatial calibration")
	cmd.Flags().Float64Var(&flags.fps, "fps", config.DefaultFPS, "Frames per second of the recording")
	cmd.Flags().Float64Var(&flags.dropVolumeUL, "drop-volume-ul", config.DefaultReferenceVolumeUL, "Drop volume matching the field of view, µL")
	cmd.Flags().IntVar(&flags.maxFrames, "max-frames", 0, "Stop after this many frames (0 reads whole video)")
	cmd.Flags().IntVar(&flags.skipFrames, "skip-frames", 0, "Frames skipped between detector calls")
	cmd.Flags().StringVar(&flags.tracker, "tracker", config.DefaultTracker, "Tracker: bytetrack or iou")
	cmd.Flags().BoolVar(&flags.noVideo, "no-video", false, "Do not write annotated video")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func printBundle(bundle *pipeline.Bundle) {
	ok := color.New(color.FgGreen).Sprint("✓")
	fmt.Printf("%s run %s\n", ok, bundle.RunID)
	for _, path := range []string{
		bundle.Artifacts.JSON,
		bundle.Artifacts.Markdown,
		bundle.Artifacts.Histogram,
		bundle.Artifacts.Dashboard,
		bundle.Artifacts.Database,
		bundle.AnnotatedVideo,
	} {
		if path == "" {
			continue
		}
		fmt.Printf("  %s\n", path)
	}
	summary := bundle.Document.Summary
	for _, w := range bundle.Document.Params.Warnings {
		fmt.Printf("%s %s\n", color.New(color.FgYellow).Sprint("warning:"), w)
	}
	fmt.Println()
	fmt.Printf("  trajectories:        %s\n", color.New(color.FgCyan).Sprint(summary.TrajectoryCount))
	fmt.Printf("  progressive motility: %s\n", color.New(color.FgCyan).Sprintf("%.2f%%", summary.ProgressiveMotilityPct))
	fmt.Printf("  mean vigor index:    %s\n", color.New(color.FgCyan).Sprintf("%.2f", summary.MeanVigorIndex))
	fmt.Printf("  concentration:       %s\n", color.New(color.FgCyan).Sprintf("%.2e per mL", bundle.Document.ConcentrationPerML))
}
