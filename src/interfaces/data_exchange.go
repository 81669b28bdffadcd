package interfaces

// -----------------------------------------------------------------------------
// IBroadcaster defines the interface for pushing messages to live observers.
// -----------------------------------------------------------------------------

type IBroadcaster interface {
	// -----------------------------------------------------------------------------
	// Broadcast submits a message for fan-out to every subscriber.
	// Safe to call from any goroutine. A no-op before Start; never blocks
	// the caller and never surfaces delivery failures.
	Broadcast(message interface{})

	// -----------------------------------------------------------------------------
	// SubscriberCount returns the number of currently registered subscribers.
	SubscriberCount() int

	// -----------------------------------------------------------------------------
	// Start the server
	Start() error

	// -----------------------------------------------------------------------------
	// Stop the server gracefully
	Stop() error
}
