package main

import (
	"encoding/json"
	"fmt"
	"os"

	"sales_analytics/api"
	"sales_analytics/internal/config"
	"sales_analytics/internal/sales"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	app := &cli.App{
		Name:  "sales-analytics",
		Usage: "Sales history storage, reports and naive revenue forecasts",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "db",
				Value:   config.DefaultDBPath,
				Usage:   "Path to the SQLite database file",
				EnvVars: []string{config.EnvDBPath},
			},
			&cli.IntFlag{
				Name:    "max-batch-rows",
				Value:   config.DefaultMaxBatchRows,
				Usage:   "Maximum data rows accepted in one upload",
				EnvVars: []string{config.EnvMaxBatchRows},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   config.DefaultLogLevel,
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{config.EnvLogLevel},
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			importCommand(),
			reportCommand(),
			forecastCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// deps bundles what every command needs.
type deps struct {
	cfg     config.Config
	logger  *zap.Logger
	storage *sales.SQLiteStorage
	service *sales.Service
}

func setup(c *cli.Context) (*deps, error) {
	cfg := config.Default()
	cfg.DBPath = c.String("db")
	cfg.MaxBatchRows = c.Int("max-batch-rows")
	cfg.LogLevel = c.String("log-level")
	if addr := c.String("addr"); addr != "" {
		cfg.HTTPAddr = addr
	}
	if c.IsSet("max-upload-bytes") {
		cfg.MaxUploadBytes = c.Int64("max-upload-bytes")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		return nil, err
	}

	storage, err := sales.NewSQLiteStorage(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("error opening store: %w", err)
	}

	return &deps{
		cfg:     cfg,
		logger:  logger,
		storage: storage,
		service: sales.NewService(storage, logger, cfg.MaxBatchRows),
	}, nil
}

func (a *deps) close() {
	a.storage.Close()
	a.logger.Sync()
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Value:   config.DefaultHTTPAddr,
				Usage:   "Listen address",
				EnvVars: []string{config.EnvHTTPAddr},
			},
			&cli.Int64Flag{
				Name:    "max-upload-bytes",
				Value:   config.DefaultMaxUploadBytes,
				Usage:   "Maximum size of one upload request body",
				EnvVars: []string{config.EnvMaxUploadBytes},
			},
		},
		Action: func(c *cli.Context) error {
			a, err := setup(c)
			if err != nil {
				return err
			}
			defer a.close()

			r := gin.Default()
			api.InitRoutes(r, a.service, a.logger, a.cfg.MaxUploadBytes)

			a.logger.Info("starting server", zap.String("addr", a.cfg.HTTPAddr), zap.String("db", a.cfg.DBPath))
			if err := r.Run(a.cfg.HTTPAddr); err != nil {
				return fmt.Errorf("error trying to start server: %w", err)
			}
			return nil
		},
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Load a CSV file of sales (date, product, quantity, amount)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "Path to the CSV file",
				Required: true,
			},
		},
		Action: func(c *cli.Context) error {
			a, err := setup(c)
			if err != nil {
				return err
			}
			defer a.close()

			f, err := os.Open(c.String("file"))
			if err != nil {
				return err
			}
			defer f.Close()

			result, err := a.service.Upload(c.Context, f)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}
}

func reportCommand() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Print daily revenue, average check and top products",
		Action: func(c *cli.Context) error {
			a, err := setup(c)
			if err != nil {
				return err
			}
			defer a.close()

			report, err := a.service.BuildReport(c.Context)
			if err != nil {
				return err
			}
			return printJSON(report)
		},
	}
}

func forecastCommand() *cli.Command {
	return &cli.Command{
		Name:  "forecast",
		Usage: "Print the naive revenue forecast for tomorrow",
		Action: func(c *cli.Context) error {
			a, err := setup(c)
			if err != nil {
				return err
			}
			defer a.close()

			fc, err := a.service.Forecast(c.Context)
			if err != nil {
				return err
			}
			return printJSON(fc)
		},
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
