package hostabi

import (
	"github.com/impactwatch/extension/internal/dispatcher"
)

// configStruct is the central configuration used by this library
type configStruct struct {
	// version is returned when the host first loads the extension
	version string

	// dispatcher handles command routing
	dispatcher *dispatcher.Dispatcher
}

// Init method initializes the config struct
func (c *configStruct) Init() {
	c.version = "No version set"
}

// SetVersion sets the version string returned by ImpactTrackerVersion
func SetVersion(version string) {
	Config.version = version
}

// SetDispatcher sets the dispatcher that handles commands
func SetDispatcher(d *dispatcher.Dispatcher) {
	Config.dispatcher = d
}

// GetDispatcher returns the configured dispatcher, or nil if not set
func GetDispatcher() *dispatcher.Dispatcher {
	return Config.dispatcher
}
