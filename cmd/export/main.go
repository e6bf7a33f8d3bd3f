package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ThanimaVITC/thanima-connect/internal/admin"
	"github.com/ThanimaVITC/thanima-connect/internal/application/repository"
	"github.com/ThanimaVITC/thanima-connect/internal/config"
	"github.com/ThanimaVITC/thanima-connect/internal/database"
	"github.com/ThanimaVITC/thanima-connect/internal/storage"
	"github.com/ThanimaVITC/thanima-connect/pkg/logger"
	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
)

const usage = `
Export every submission to submissions.csv and every résumé to resumes.zip.

Usage:

export [-h] [-f ENV_FILE_PATH] [-o OUT_DIR]

ENV_FILE_PATH: path to a .env file with MONGODB_URI and the storage settings
OUT_DIR:       directory to write into (default: current directory)

example
  export -f ./.env -o ./dump
`

func main() {
	var showHelp bool
	var envFilename, outDir string
	var timeout time.Duration
	flag.BoolVarP(&showHelp, "help", "h", false, "show help")
	flag.StringVarP(&envFilename, "env-file", "f", "", "path to the .env file")
	flag.StringVarP(&outDir, "out", "o", ".", "output directory")
	flag.DurationVar(&timeout, "timeout", 5*time.Minute, "overall export timeout")
	flag.Parse()

	if showHelp {
		fmt.Print(usage + "\n")
		return
	}

	logger.Init(os.Getenv("LOG_LEVEL"))
	if envFilename != "" {
		logger.Infof("loading environment variables from %s", envFilename)
		if err := godotenv.Load(envFilename); err != nil {
			logger.Fatalf("failed to load environment variables: %v", err)
		}
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	if cfg.MongoDB.URI == "" {
		logger.Fatalf("MONGODB_URI is required for export")
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := run(ctx, cfg, outDir); err != nil {
		logger.Fatalf("export failed: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config, outDir string) error {
	client, err := database.ConnectWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, cfg.MongoDB.ConnectAttempts, time.Second)
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	db := client.Database(cfg.MongoDB.Database)
	blobs, err := storage.New(ctx, cfg.Storage, db)
	if err != nil {
		return err
	}
	svc := admin.New(repository.NewMongoRepo(db.Collection(cfg.MongoDB.Collection), false), blobs)
	return export(ctx, svc, outDir)
}

func export(ctx context.Context, svc *admin.Service, outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	content, err := svc.ExportCSV(ctx)
	if err != nil {
		return err
	}
	csvPath := filepath.Join(outDir, "submissions.csv")
	if err := os.WriteFile(csvPath, []byte(content), 0o644); err != nil {
		return err
	}
	logger.Infof("wrote %s", csvPath)

	zipped, err := svc.BundleAttachments(ctx)
	switch {
	case errors.Is(err, admin.ErrNothingToExport):
		logger.Infof("no résumés to export")
		return nil
	case err != nil:
		return err
	}
	zipPath := filepath.Join(outDir, "resumes.zip")
	if err := os.WriteFile(zipPath, zipped, 0o644); err != nil {
		return err
	}
	logger.Infof("wrote %s (%d bytes)", zipPath, len(zipped))
	return nil
}
