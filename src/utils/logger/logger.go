package logger

import (
	"os"

	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/build_info"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/config"

	"github.com/sirupsen/logrus"
)

var logger = logrus.New()

// Text output for development, JSON everywhere else
func Init(config *config.Config) (err error) {
	level, err := logrus.ParseLevel(config.LogLevel)
	if err != nil {
		return
	}
	logger.SetLevel(level)
	logger.SetOutput(os.Stdout)

	if config.IsDevelopment {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	return nil
}

func NewSublogger(tag string) *logrus.Entry {
	return logger.WithFields(logrus.Fields{
		"module":  "selliko." + tag,
		"version": build_info.Version,
	})
}
