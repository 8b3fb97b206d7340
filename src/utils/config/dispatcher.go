package config

import (
	"time"

	"github.com/spf13/viper"
)

type Dispatcher struct {
	// Webhook receiving freshly issued delivery codes. Empty disables dispatching
	Url string

	// Bearer token sent to the webhook
	Token string

	// Single request timeout
	RequestTimeout time.Duration

	// Dispatch backoff configuration
	MaxElapsedTime time.Duration
	MaxInterval    time.Duration

	// Num of workers sending codes
	MaxWorkers int
}

func setDispatcherDefaults() {
	viper.SetDefault("Dispatcher.Url", "")
	viper.SetDefault("Dispatcher.Token", "")
	viper.SetDefault("Dispatcher.RequestTimeout", "5s")
	viper.SetDefault("Dispatcher.MaxElapsedTime", "2m")
	viper.SetDefault("Dispatcher.MaxInterval", "10s")
	viper.SetDefault("Dispatcher.MaxWorkers", "5")
}
