// backend-go/cmd/report/main.go
package main

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/codicehealth/codice-inventory/backend-go/internal/config"
	"github.com/codicehealth/codice-inventory/backend-go/internal/engine"
	"github.com/codicehealth/codice-inventory/backend-go/internal/export"
	"github.com/codicehealth/codice-inventory/backend-go/internal/service"
	"github.com/codicehealth/codice-inventory/backend-go/internal/storage"
	"github.com/codicehealth/codice-inventory/backend-go/internal/store"
	"github.com/codicehealth/codice-inventory/backend-go/internal/store/postgres"
	"github.com/codicehealth/codice-inventory/backend-go/internal/store/postgrest"
	"github.com/codicehealth/codice-inventory/backend-go/pkg/logger"
)

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "format",
			Usage: "Output format: csv or xlsx",
			Value: "csv",
		},
		&cli.StringFlag{
			Name:  "out",
			Usage: "Output file path (default: <report>-<date>.<format>)",
		},
		&cli.BoolFlag{
			Name:  "archive",
			Usage: "Upload the report to the configured archive bucket",
		},
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "report",
		Usage: "Generate inventory intelligence reports",
		Commands: []*cli.Command{
			{
				Name:  "recommendations",
				Usage: "Export purchase recommendations",
				Flags: append(outputFlags(), &cli.Int64Flag{
					Name:  "branch",
					Usage: "Branch ID to analyze (0 = all branches)",
				}),
				Action: runRecommendations,
			},
			{
				Name:   "redistribution",
				Usage:  "Export inter-branch transfer opportunities",
				Flags:  outputFlags(),
				Action: runRedistribution,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runRecommendations(c *cli.Context) error {
	cfg := config.Load()
	logger.SetLevel(cfg.Server.Mode)

	st, err := newBackend(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize store backend: %w", err)
	}

	svc := service.NewRecommendationService(st, cfg.Engine)
	report, err := svc.Recommendations(c.Context, c.Int64("branch"))
	if err != nil {
		return fmt.Errorf("failed to build recommendation report: %w", err)
	}

	return writeReport(c, cfg, "recommendations", func(w io.Writer, format string) error {
		if format == "xlsx" {
			return export.WriteRecommendationsXLSX(w, report)
		}
		return export.WriteRecommendationsCSV(w, report)
	})
}

func runRedistribution(c *cli.Context) error {
	cfg := config.Load()
	logger.SetLevel(cfg.Server.Mode)

	st, err := newBackend(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize store backend: %w", err)
	}

	svc := service.NewRedistributionService(st, cfg.Engine, engine.HaversineDistance{})
	report, err := svc.Redistribution(c.Context)
	if err != nil {
		return fmt.Errorf("failed to build redistribution report: %w", err)
	}

	return writeReport(c, cfg, "redistribution", func(w io.Writer, format string) error {
		if format == "xlsx" {
			return export.WriteRedistributionXLSX(w, report)
		}
		return export.WriteRedistributionCSV(w, report)
	})
}

func writeReport(c *cli.Context, cfg *config.Config, name string, write func(io.Writer, string) error) error {
	format := c.String("format")
	if format != "csv" && format != "xlsx" {
		return fmt.Errorf("unsupported format %q, expected csv or xlsx", format)
	}

	outPath := c.String("out")
	if outPath == "" {
		outPath = fmt.Sprintf("%s-%s.%s", name, time.Now().Format("2006-01-02"), format)
	}

	var buf bytes.Buffer
	if err := write(&buf, format); err != nil {
		return fmt.Errorf("failed to render %s report: %w", name, err)
	}

	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	log.Printf("Wrote %s (%d bytes)", outPath, buf.Len())

	if c.Bool("archive") {
		if !cfg.Archive.Enabled {
			return fmt.Errorf("--archive requires the archive backend to be enabled")
		}
		client, err := storage.NewArchiveClient(cfg.Archive)
		if err != nil {
			return fmt.Errorf("failed to initialize archive client: %w", err)
		}
		key := filepath.ToSlash(filepath.Join("reports", time.Now().Format("2006-01-02"), filepath.Base(outPath)))
		if err := client.UploadObject(c.Context, key, buf.Bytes()); err != nil {
			return fmt.Errorf("failed to upload report: %w", err)
		}
		log.Printf("Uploaded %s to bucket %s", key, cfg.Archive.Bucket)
	}

	return nil
}

func newBackend(cfg *config.Config) (store.Store, error) {
	if cfg.Store.Backend == "postgres" {
		return postgres.New(cfg.Store)
	}
	return postgrest.New(cfg.Store), nil
}
