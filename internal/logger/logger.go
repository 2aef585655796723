package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// New builds the process logger. Development mode gets a human-readable
// console encoder; anything else gets production JSON.
func New(env string) (*zap.Logger, error) {
	var (
		log *zap.Logger
		err error
	)
	if env == "development" {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	zap.ReplaceGlobals(log)
	return log, nil
}
