package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// New constructs the process-wide zap logger for the given environment.
// Local and development environments get human-readable console output,
// everything else gets production JSON. The logger is constructed once in
// main and passed explicitly to every component.
func New(env string) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error

	switch env {
	case "local", "development":
		logger, err = zap.NewDevelopment()
	default:
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build logger for env %q: %w", env, err)
	}

	return logger, nil
}
