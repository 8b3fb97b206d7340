package config

import (
	"time"

	"github.com/spf13/viper"
)

type Publisher struct {
	// Is the outbox relay running together with the API
	Enabled bool

	// Redis channel events are published to
	ChannelName string

	// How often the outbox is polled
	Interval time.Duration

	// Max number of events taken from the outbox in one run
	BatchSize int

	// Max number of published messages per second
	MaxPerSecond int

	// Publish backoff configuration, 0 is no limit
	MaxElapsedTime time.Duration
	MaxInterval    time.Duration
}

func setPublisherDefaults() {
	viper.SetDefault("Publisher.Enabled", "true")
	viper.SetDefault("Publisher.ChannelName", "listing_events")
	viper.SetDefault("Publisher.Interval", "1s")
	viper.SetDefault("Publisher.BatchSize", "100")
	viper.SetDefault("Publisher.MaxPerSecond", "500")
	viper.SetDefault("Publisher.MaxElapsedTime", "30s")
	viper.SetDefault("Publisher.MaxInterval", "5s")
}
