// Package stream maintains the persistent TCP connection to the emulator,
// frames newline-delimited JSON messages out of the raw byte stream, and
// publishes normalized records and connection-state changes to observers.
package stream

// ConnectionState is the externally observable lifecycle of the client.
type ConnectionState int

const (
	// Disconnected means no transport is active.
	Disconnected ConnectionState = iota
	// Connecting means a connection attempt is in flight.
	Connecting
	// Connected means the transport is ready and reads are running.
	Connected
)

// String returns the log/metric label for the state.
func (s ConnectionState) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}
