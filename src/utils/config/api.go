package config

import (
	"time"

	"github.com/spf13/viper"
)

type Api struct {
	// Address of the public REST API
	ListenAddress string

	// Max time a single request may take
	RequestTimeout time.Duration

	// Delivery confirmations allowed per listing, refilled every ConfirmInterval
	ConfirmBurst    int
	ConfirmInterval time.Duration

	// How long an idle per-listing limiter is kept
	ConfirmLimiterTTL time.Duration
}

func setApiDefaults() {
	viper.SetDefault("Api.ListenAddress", ":8080")
	viper.SetDefault("Api.RequestTimeout", "10s")
	viper.SetDefault("Api.ConfirmBurst", "5")
	viper.SetDefault("Api.ConfirmInterval", "1m")
	viper.SetDefault("Api.ConfirmLimiterTTL", "30m")
}
