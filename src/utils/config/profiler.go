package config

import (
	"github.com/spf13/viper"
)

// pprof endpoints on the monitoring server
type Profiler struct {
	Enabled bool

	// See runtime.SetBlockProfileRate
	BlockProfileRate int

	// See runtime.SetMutexProfileFraction, lock contention on listing rows shows up here
	MutexProfileFraction int
}

func setProfilerDefaults() {
	viper.SetDefault("Profiler.Enabled", "false")
	viper.SetDefault("Profiler.BlockProfileRate", "50")
	viper.SetDefault("Profiler.MutexProfileFraction", "10")
}
