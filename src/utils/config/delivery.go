package config

import (
	"github.com/spf13/viper"
)

type Delivery struct {
	// bcrypt cost used for hashing delivery codes
	CodeHashCost int
}

func setDeliveryDefaults() {
	viper.SetDefault("Delivery.CodeHashCost", "10")
}
