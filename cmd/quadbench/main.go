package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/AleCandido/quad/internal/bench"
	"github.com/AleCandido/quad/pkg/config"
	"github.com/AleCandido/quad/pkg/logger"
	"github.com/AleCandido/quad/pkg/models"
)

func main() {
	var scenarioPath string
	var logLevel string

	flag.StringVar(&scenarioPath, "scenario", "scenario.yaml", "benchmark scenario file")
	flag.StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	scenario, err := config.LoadScenario(scenarioPath)
	if err != nil {
		logger.SetDefault(logger.NewText("info", os.Stdout))
		logger.Error("failed to load scenario", "path", scenarioPath, "error", err)
		os.Exit(1)
	}

	level := scenario.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	logger.SetDefault(logger.NewText(level, os.Stdout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := bench.New(scenario).Run(ctx)
	if err != nil {
		logger.Error("benchmark run failed", "error", err)
		os.Exit(1)
	}

	failed := 0
	for _, cr := range report.Cases {
		if cr.Result.Status != models.StatusConverged {
			failed++
			logger.Warn("case did not converge",
				"case", cr.Name,
				"status", cr.Result.Status,
				"error_bound", cr.Result.ErrorBound)
		}
	}
	if failed > 0 {
		logger.Warn("benchmark finished with non-converged cases",
			"run_id", report.RunID, "failed", failed, "total", len(report.Cases))
		os.Exit(1)
	}

	logger.Info("all cases converged", "run_id", report.RunID, "total", len(report.Cases))
}
