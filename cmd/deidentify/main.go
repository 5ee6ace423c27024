// Command deidentify de-identifies a directory of ultrasound DICOM records:
// identifiers are pseudonymized with format-preserving encryption, metadata
// PHI is stripped or generalized, and the banner rows burned into the pixel
// data are blacked out. Output files are content-addressed so repeated runs
// are idempotent.
package main

import (
	"context"
	"encoding/base64"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ultrasound-deid/internal/archive"
	"ultrasound-deid/internal/batch"
	"ultrasound-deid/internal/config"
	"ultrasound-deid/internal/logger"
	"ultrasound-deid/internal/pseudonym"
	"ultrasound-deid/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "deidentify: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		inputDir  = flag.String("input", "", "directory of input DICOM files")
		outputDir = flag.String("output", "", "directory for de-identified output")
		zipDir    = flag.String("zip-dir", "", "optional directory of ZIP bundles to extract into the input directory first")
		initKey   = flag.Bool("init-key", false, "generate a new encryption key at the configured key file and exit")
		pngFlag   = flag.Bool("png", false, "also write a PNG preview of each redacted record")
		workers   = flag.Int("workers", 0, "worker count override")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel)

	if *initKey {
		key, err := pseudonym.GenerateKey(cfg.KeyFile)
		if err != nil {
			return err
		}
		log.Info("encryption key generated", "path", cfg.KeyFile)
		fmt.Printf("DEID_ENCRYPTION_KEY=%s\n", base64.StdEncoding.EncodeToString(key))
		return nil
	}

	if *inputDir == "" || *outputDir == "" {
		flag.Usage()
		return fmt.Errorf("both -input and -output are required")
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}
	if *pngFlag {
		cfg.DebugPNG = true
	}

	// Key problems are fatal before any record is touched. Minting a
	// replacement key here would silently fork the pseudonym space.
	key, err := pseudonym.LoadKey(cfg.KeyFile, cfg.KeyBase64)
	if err != nil {
		return err
	}

	var ids pseudonym.Transformer
	switch cfg.PseudonymMode {
	case "mapper":
		ids, err = pseudonym.NewMapper(key, cfg.MappingFile)
	default:
		ids, err = pseudonym.NewPseudonymizer(key)
	}
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *zipDir != "" {
		if err := archive.ExtractAll(ctx, *zipDir, *inputDir, log); err != nil {
			return fmt.Errorf("archive extraction failed: %w", err)
		}
	}
	if _, err := os.Stat(*inputDir); err != nil {
		return fmt.Errorf("input directory is not readable: %w", err)
	}

	pipe := batch.NewPipeline(ids, cfg.DebugPNG)
	orch := batch.NewOrchestrator(
		storage.NewLocal(*inputDir),
		storage.NewLocal(*outputDir),
		pipe, log, cfg.Workers, cfg.ChunkSize,
	)

	report, err := orch.Run(ctx)
	if report != nil {
		fmt.Println(report.Summary())
	}
	return err
}
