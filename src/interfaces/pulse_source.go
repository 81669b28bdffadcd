package interfaces

import (
	"context"
	"sync"
	"time"
)

// -----------------------------------------------------------------------------
// IPulseSource is the contract shared by the hardware edge reader and the
// synthetic Poisson generator.
// -----------------------------------------------------------------------------

type IPulseSource interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// IsHardware returns true if the source reads a physical line
	IsHardware() bool

	// -----------------------------------------------------------------------------

	// SetCallback registers the pulse callback. The callback is invoked from
	// the source's own goroutine (or the kernel event handler thread) and
	// must be safe for concurrent use. Must be called before Start.
	SetCallback(cb func(ts time.Time))

	// -----------------------------------------------------------------------------

	// Start begins pulse delivery.
	// ctx: controls the lifecycle (cancellation stops the source)
	// wg: WaitGroup to signal when the source has fully stopped
	Start(ctx context.Context, wg *sync.WaitGroup) error

	// -----------------------------------------------------------------------------

	// Stop terminates pulse delivery and releases any hardware claim.
	// Idempotent; stopping an already-stopped source is a no-op.
	Stop() error
}
