package events

import "github.com/asaskevich/EventBus"

// GlobalBus is the shared event bus for the entire application
var GlobalBus EventBus.Bus

func init() {
	GlobalBus = EventBus.New()
}

// Event types for application-wide coordination
const (
	// EventShutdownRequested asks main to cancel the command context;
	// published by components that hit a fatal error. Payload is the reason.
	EventShutdownRequested = "app:shutdown:requested"

	// Watcher events
	EventWatcherStarted = "watcher:started"
	EventWatcherStopped = "watcher:stopped"

	// Asset events published by the watcher; payload is the local file path.
	// The task queue subscribes to these, nothing else talks to the network
	// from watch mode.
	EventAssetModified = "watch:asset:modified"
	EventAssetRemoved  = "watch:asset:removed"
)
