package main

import (
	"context"
	"flag"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/hotelagreement/backend/internal/domain/agreement"
	"github.com/hotelagreement/backend/internal/infrastructure/config"
	"github.com/hotelagreement/backend/internal/infrastructure/logger"
	"github.com/hotelagreement/backend/internal/infrastructure/printing"
	"github.com/hotelagreement/backend/internal/infrastructure/storage"
	"go.uber.org/zap"
)

func main() {
	var (
		uploadFrom string
		logLevel   string
		timeout    time.Duration
	)

	flag.StringVar(&uploadFrom, "upload-from", "", "Local directory whose layout assets are uploaded when the asset source is s3")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.DurationVar(&timeout, "timeout", 2*time.Minute, "Overall timeout")
	flag.Usage = printUsage
	flag.Parse()

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := run(ctx, cfg, uploadFrom, log); err != nil {
		log.Error("Provisioning failed", zap.Error(err))
		_ = logger.Sync(log)
		os.Exit(1)
	}
	log.Info("Provisioning complete")
}

func run(ctx context.Context, cfg *config.Config, uploadFrom string, log *zap.Logger) error {
	if err := printing.EnsureDirs(cfg.Export.Dir, cfg.HTTP.StaticDir); err != nil {
		return err
	}
	log.Info("Directories ready",
		zap.String("export_dir", cfg.Export.Dir),
		zap.String("static_dir", cfg.HTTP.StaticDir))

	layouts, err := printing.NewLayoutStore(&printing.LayoutStoreConfig{
		ExternalDir: cfg.Layout.Dir,
		DefaultName: cfg.Layout.Default,
		Logger:      log,
	})
	if err != nil {
		return fmt.Errorf("failed to load layouts: %w", err)
	}
	all := layouts.All()
	if def := layouts.Default(); def != nil && (cfg.Layout.Template != "" || cfg.Layout.Font != "") {
		all = append(all, def.WithAssets(cfg.Layout.Template, cfg.Layout.Font))
	}

	var assets printing.AssetSource
	switch cfg.Assets.Source {
	case config.AssetSourceS3:
		s3Assets, err := storage.NewS3AssetSource(&cfg.Assets.S3, storage.WithLogger(log))
		if err != nil {
			return fmt.Errorf("failed to create s3 asset source: %w", err)
		}
		if err := s3Assets.EnsureBucket(ctx); err != nil {
			return err
		}
		if uploadFrom != "" {
			if err := uploadAssets(ctx, s3Assets, uploadFrom, all, log); err != nil {
				return err
			}
		}
		assets = s3Assets
	default:
		if uploadFrom != "" {
			log.Warn("Ignoring -upload-from for the filesystem asset source")
		}
		assets = printing.NewFileSystemAssets(cfg.Assets.Dir)
	}

	missing, err := printing.CheckAssets(ctx, assets, all)
	if err != nil {
		return err
	}
	for _, m := range missing {
		log.Error("Missing asset", zap.String("asset", m.String()))
	}
	if len(missing) > 0 {
		return fmt.Errorf("%d assets missing", len(missing))
	}

	log.Info("All layout assets present", zap.Int("layouts", len(layouts.All())))
	return nil
}

// uploadAssets copies each distinct template and font from dir into the bucket
func uploadAssets(ctx context.Context, dst *storage.S3AssetSource, dir string, layouts []*agreement.Layout, log *zap.Logger) error {
	seen := make(map[string]struct{})
	for _, l := range layouts {
		for _, name := range []string{l.Template(), l.Font()} {
			if name == "" {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}

			path := name
			if !filepath.IsAbs(path) {
				path = filepath.Join(dir, name)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}

			contentType := mime.TypeByExtension(filepath.Ext(name))
			if contentType == "" {
				contentType = "application/octet-stream"
			}
			if err := dst.Upload(ctx, name, data, contentType); err != nil {
				return err
			}
			log.Info("Uploaded asset",
				zap.String("name", name),
				zap.String("key", dst.Key(name)),
				zap.Int("bytes", len(data)))
		}
	}
	return nil
}

func printUsage() {
	fmt.Println(`Agreement Provisioning Tool

Usage:
  provision [flags]

Creates the export and static directories, optionally uploads the layout
assets to the s3 bucket, then checks every layout's template and font exist.
Exits non-zero when an asset is missing.

Flags:`)
	flag.PrintDefaults()
	fmt.Println(`
Examples:
  provision
  provision -upload-from ./assets
  AGREEMENT_ASSETS_SOURCE=s3 provision -upload-from ./assets -log-level debug`)
}
