// Package emufeed serves a synthetic emulator snapshot stream for
// exercising the scanner without a running emulator. Each connection
// receives newline-delimited JSON payloads on a fixed cadence, with
// optional clear sentinels and deliberately malformed lines mixed in.
package emufeed

import "time"

// Config controls the feed server.
type Config struct {
	// Addr is the TCP listen address.
	Addr string

	// Interval is the delay between consecutive lines on a connection.
	Interval time.Duration

	// ShinyOdds is the denominator of the shiny chance; 1 makes every
	// encounter shiny, 0 disables shinies.
	ShinyOdds int

	// ClearEvery emits a clear sentinel after every N encounters.
	// 0 disables clears.
	ClearEvery int

	// MalformedEvery injects a broken line after every N encounters.
	// 0 disables malformed lines.
	MalformedEvery int
}
