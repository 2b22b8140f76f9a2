package logger

import (
	"os"

	"heriken-shop/internal/config"

	log "github.com/sirupsen/logrus"
)

// Init configures the global logrus logger. Unknown levels fall back to info.
func Init(logCfg *config.Log) {
	log.SetOutput(os.Stdout)

	if logCfg.Format == "text" {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&log.JSONFormatter{})
	}

	level, err := log.ParseLevel(logCfg.Level)
	if err != nil {
		log.WithField("level", logCfg.Level).Warn("Unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
