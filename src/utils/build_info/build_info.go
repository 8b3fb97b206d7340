package build_info

// Set with -ldflags "-X github.com/dirtsid3r/sellikoweb-sub001/src/utils/build_info.Version=..."
var Version = "dev"
