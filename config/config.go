package config

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	// ModeDev enables human readable debug logging.
	ModeDev = "dev"
	// ModeProd enables JSON logging at info level.
	ModeProd = "prod"
)

// Config defines cross-cutting concerns.
type Config struct {
	Logger      *zap.SugaredLogger
	Environment *Environment
}

// NewLogger creates the logger matching the supplied mode.
func NewLogger(mode string) (*zap.Logger, error) {
	switch mode {
	case ModeDev:
		return zap.NewDevelopment()
	case ModeProd:
		return zap.NewProduction()
	default:
		return nil, errors.Errorf("Invalid 'mode' setting: %s", mode)
	}
}
