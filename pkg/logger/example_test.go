package logger_test

import (
	"errors"

	"github.com/hunterlabs/hunter/pkg/config"
	"github.com/hunterlabs/hunter/pkg/logger"
)

// Example_basic demonstrates basic logger usage
func Example_basic() {
	cfg := &config.Config{
		Env:       "development",
		LogLevel:  "info",
		LogFormat: "console",
	}

	log := logger.New(cfg)

	log.Debug("This won't appear (level is info)")
	log.Info("Pipeline started")
	log.Warn("Corpus embeddings are stale")
	log.Error("Failed to reach LLM endpoint")

	// Formatted logging
	log.Infof("Scored %d candidates", 120)
	log.Warnf("Retry attempt %d of %d", 3, 5)
}

// Example_withFields demonstrates structured logging with fields
func Example_withFields() {
	cfg := &config.Config{
		Env:       "production",
		LogLevel:  "info",
		LogFormat: "json",
	}

	log := logger.New(cfg)

	runLog := log.WithField("report_id", 42)
	runLog.Info("Narrative report created")

	clusterLog := log.WithFields(map[string]interface{}{
		"cluster_id": 3,
		"members":    8,
		"saturation": "medium",
	})
	clusterLog.Info("Cluster labeled")
}

// Example_withError demonstrates error logging
func Example_withError() {
	cfg := &config.Config{
		Env:       "production",
		LogLevel:  "error",
		LogFormat: "json",
	}

	log := logger.New(cfg)

	err := errors.New("database connection timeout")
	log.WithError(err).Error("Failed to persist report")

	log.WithError(err).
		WithFields(map[string]interface{}{
			"retry_count": 3,
			"timeout_ms":  5000,
		}).
		Error("Connection failed after retries")
}
