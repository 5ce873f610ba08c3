package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"rhst-exporter/internal/batch"
	"rhst-exporter/internal/config"
	"rhst-exporter/internal/convert"
	"rhst-exporter/internal/preview"
	"rhst-exporter/internal/texture"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to a .json, .toml or .yaml config file")
	outputDir := flag.String("o", "", "Output directory (default: current directory)")
	format := flag.String("format", "", "Output format: binary or json (default: binary)")
	texturesDir := flag.String("textures", "", "Directory staged textures are written to (default: <output>/textures)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	doConvert := flag.Bool("convert", false, "Run the converter on each exported file")
	doPreview := flag.Bool("preview", false, "Write a WebP preview next to each export")
	verbose := flag.Bool("v", false, "Verbose logging")

	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	inputs := flag.Args()
	if len(inputs) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no input scenes. Usage: rhstexport [flags] scene.gltf...")
		os.Exit(1)
	}

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	if err := cfg.Resolve(config.Flags{
		OutputDir:   *outputDir,
		TexturesDir: *texturesDir,
		Format:      *format,
		Workers:     *workers,
		Convert:     *doConvert,
		Preview:     *doPreview,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	stage := texture.StageOptions{
		Optimize: texture.Optimize(cfg.TextureOptimize),
		Formats:  cfg.TextureFormats,
		Mipmaps:  cfg.Mipmaps,
	}
	if cfg.TextureEncoder != "" {
		enc := texture.NewEncoder(cfg.TextureEncoder)
		if enc.Available(ctx) {
			stage.Encoder = enc
		} else {
			log.Warn("texture encoder not found, staging PNGs", "encoder", cfg.TextureEncoder)
		}
	}

	runID := batch.NewRunID()
	batchCfg := batch.Config{
		RunID:          runID,
		OutputDir:      cfg.OutputDir,
		Format:         cfg.Format,
		Indent:         cfg.Indent,
		Params:         cfg.Params(),
		DumpTextures:   *cfg.DumpTextures,
		TexturesDir:    cfg.TexturesDir,
		Stage:          stage,
		Target:         cfg.Converter.Target,
		ConvertVerbose: cfg.Converter.Verbose,
		KeepArtifacts:  cfg.Converter.KeepBuildArtifacts,
		Preview:        cfg.Preview.Enabled,
		PreviewOptions: preview.Options{
			Size:        cfg.Preview.Size,
			Supersample: cfg.Preview.Supersample,
			Margin:      preview.DefaultOptions().Margin,
		},
		Workers: cfg.Workers,
		Logger:  log,
	}
	if cfg.Converter.Enabled {
		batchCfg.Converter = convert.New(cfg.Converter.Path)
	}

	// Print summary
	fmt.Printf("RHST export (%s)\n", cfg.Format)
	fmt.Printf("Scenes: %d, Workers: %d\n", len(inputs), cfg.Workers)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()
	results := batch.Run(ctx, batchCfg, inputs)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	// Count results
	success, failed := 0, 0
	var failures []batch.Result
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failed++
			failures = append(failures, r)
		}
	}

	fmt.Printf("Exported: %d/%d\n", success, len(inputs))

	if len(failures) > 0 {
		fmt.Printf("\nFailed (%d):\n", failed)
		limit := min(len(failures), 20)
		for _, e := range failures[:limit] {
			fmt.Printf("  %s: %s\n", e.Input, e.Error)
		}
	}

	// Write manifest
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := batch.WriteManifest(manifestPath, runID, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if failed > 0 {
		os.Exit(1)
	}
}
