package config

import (
	"github.com/spf13/viper"
)

type Assignment struct {
	// Max number of open tasks an agent may hold before it stops being eligible
	AgentCapacity int
}

func setAssignmentDefaults() {
	viper.SetDefault("Assignment.AgentCapacity", "5")
}
