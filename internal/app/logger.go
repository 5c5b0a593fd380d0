package app

import (
	"fmt"

	"github.com/angel7544/mentorconnect/pkg/logger"
)

// ConfigureLogging initialises the global logger from server configuration.
func ConfigureLogging(cfg ServerConfig) error {
	if err := logger.Init(cfg.LogLevel); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	return nil
}
