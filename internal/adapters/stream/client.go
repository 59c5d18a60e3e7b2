package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pattarpon/pokescan/internal/domain/dex"
	"github.com/pattarpon/pokescan/internal/domain/model"
	"github.com/pattarpon/pokescan/internal/domain/normalize"
	"github.com/pattarpon/pokescan/pkg/logger"
	"github.com/pattarpon/pokescan/pkg/metrics"
)

// Default client configuration constants.
const (
	defaultHost           = "127.0.0.1"
	defaultPort           = 9876
	defaultReconnectDelay = 2 * time.Second
	defaultReadBuffer     = 4096
	newline               = 0x0A
)

// Dialer opens the transport. Injected in tests.
type Dialer func(ctx context.Context, network, addr string) (net.Conn, error)

// Client owns the connection lifecycle: dial, continuous read, framing,
// and the fixed-delay reconnect loop. A single goroutine runs the whole
// state machine, so internal buffer and record mutations are serialized.
type Client struct {
	host           string
	port           int
	portFile       string
	reconnectDelay time.Duration
	readBufferSize int
	dial           Dialer
	logger         logger.Logger

	dex      *dex.Dex
	registry *normalize.Registry

	// Observers; registered before Start, invoked on the owner goroutine.
	onRecord []func(*model.Record)
	onState  []func(ConnectionState)

	// Framing buffer, touched only by the owner goroutine.
	buffer bytes.Buffer

	// Published state.
	mu      sync.RWMutex
	state   ConnectionState
	current *model.Record

	// Lifecycle.
	lifecycle sync.Mutex
	running   bool
	cancel    context.CancelFunc
	done      chan struct{}
}

// New creates a client. The discovery file named by WithPortFile is read
// once here; a valid integer in it overrides the configured port.
func New(d *dex.Dex, registry *normalize.Registry, opts ...Option) *Client {
	c := &Client{
		host:           defaultHost,
		port:           defaultPort,
		reconnectDelay: defaultReconnectDelay,
		readBufferSize: defaultReadBuffer,
		dial:           (&net.Dialer{}).DialContext,
		logger:         logger.Named("stream"),
		dex:            d,
		registry:       registry,
		state:          Disconnected,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.portFile != "" {
		if port, err := readPortFile(c.portFile); err == nil {
			c.logger.Info(context.Background(), "using port from discovery file",
				logger.String("path", c.portFile),
				logger.Int("port", port),
			)
			c.port = port
		}
	}
	return c
}

// readPortFile parses a single integer from the discovery file.
func readPortFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	port, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, err
	}
	if port < 1 || port > 65535 {
		return 0, ErrInvalidPort
	}
	return port, nil
}

// Addr returns the target address the client dials.
func (c *Client) Addr() string {
	return net.JoinHostPort(c.host, strconv.Itoa(c.port))
}

// OnRecord registers an observer for current-record changes. A nil record
// means the display was cleared. Must be called before Start.
func (c *Client) OnRecord(fn func(*model.Record)) {
	c.onRecord = append(c.onRecord, fn)
}

// OnState registers an observer for connection-state changes.
// Must be called before Start.
func (c *Client) OnState(fn func(ConnectionState)) {
	c.onState = append(c.onState, fn)
}

// CurrentRecord returns the latest normalized record, or nil.
func (c *Client) CurrentRecord() *model.Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// State returns the current connection state.
func (c *Client) State() ConnectionState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Start launches the connection loop. Calling Start on a running client
// is a no-op.
func (c *Client) Start(ctx context.Context) {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	if c.running {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	c.running = true

	c.logger.Info(ctx, "starting stream client", logger.String("addr", c.Addr()))
	go c.run(runCtx)
}

// Stop cancels any in-flight connection and pending reconnect, waits for
// the owner goroutine to exit, and leaves the client Disconnected. It is
// idempotent and the client never reconnects afterward until Start is
// called again.
func (c *Client) Stop() {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	if !c.running {
		return
	}
	c.cancel()
	<-c.done
	c.running = false
	c.setState(Disconnected)
}

// run is the owner goroutine: one iteration per connection attempt.
// The loop structure guarantees at most one pending reconnect delay.
func (c *Client) run(ctx context.Context) {
	defer close(c.done)

	for {
		c.setState(Connecting)

		conn, err := c.dial(ctx, "tcp", c.Addr())
		if err != nil {
			c.setState(Disconnected)
			if ctx.Err() != nil {
				return
			}
			c.logger.Warn(ctx, "connection failed", logger.Error(err))
			if !c.waitReconnect(ctx) {
				return
			}
			metrics.RecordReconnect()
			continue
		}

		c.logger.Info(ctx, "connected", logger.String("addr", c.Addr()))
		c.buffer.Reset()
		c.setState(Connected)

		c.readLoop(ctx, conn)

		c.setState(Disconnected)
		if ctx.Err() != nil {
			return
		}
		if !c.waitReconnect(ctx) {
			return
		}
		metrics.RecordReconnect()
	}
}

// waitReconnect blocks for the fixed delay. It reports false when the
// client was stopped before the delay elapsed. The caller records the
// reconnect metric alongside the re-dial it then issues.
func (c *Client) waitReconnect(ctx context.Context) bool {
	timer := time.NewTimer(c.reconnectDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// readLoop reads until the stream ends, errors, or the context cancels.
// A watcher goroutine closes the connection on cancellation so the
// blocking Read is pre-empted immediately.
func (c *Client) readLoop(ctx context.Context, conn net.Conn) {
	watcherDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-watcherDone:
		}
	}()
	defer func() {
		close(watcherDone)
		_ = conn.Close()
	}()

	buf := make([]byte, c.readBufferSize)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			metrics.RecordBytesReceived(n)
			c.ingest(ctx, buf[:n])
		}
		if err != nil {
			if ctx.Err() == nil && !errors.Is(err, io.EOF) {
				c.logger.Warn(ctx, "read failed", logger.Error(err))
			}
			return
		}
	}
}

// ingest appends a chunk to the framing buffer and drains every complete
// line. A trailing partial line stays buffered for the next read, so the
// processed message sequence is independent of chunk boundaries.
func (c *Client) ingest(ctx context.Context, data []byte) {
	c.buffer.Write(data)

	for {
		idx := bytes.IndexByte(c.buffer.Bytes(), newline)
		if idx < 0 {
			return
		}
		line := make([]byte, idx)
		copy(line, c.buffer.Bytes()[:idx])
		c.buffer.Next(idx + 1)

		if len(line) == 0 {
			continue
		}
		c.processLine(ctx, line)
	}
}

// processLine decodes one framed message. Malformed lines are discarded
// and never drop the connection; a normalization failure keeps the
// previous record.
func (c *Client) processLine(ctx context.Context, line []byte) {
	start := time.Now()
	defer func() {
		metrics.RecordLineProcessingLatency(float64(time.Since(start).Nanoseconds()) / 1e6)
	}()
	metrics.RecordLineReceived()

	var raw model.RawPayload
	if err := json.Unmarshal(line, &raw); err != nil {
		metrics.RecordParseError()
		c.logger.Warn(ctx, "discarding malformed line",
			logger.String("raw", string(line)),
			logger.Error(err),
		)
		return
	}

	if raw.IsClear() {
		metrics.RecordClearMessage()
		c.logger.Debug(ctx, "clear received")
		c.setCurrent(nil)
		return
	}

	rec, ok := c.registry.Normalize(&raw, c.dex)
	if !ok {
		metrics.RecordNormalizationFailure()
		c.logger.Warn(ctx, "payload has no resolvable species",
			logger.String("raw", string(line)),
		)
		return
	}

	metrics.RecordRecordNormalized()
	c.logger.Debug(ctx, "record updated",
		logger.String("pokemon", rec.Label()),
		logger.Int("ivTotal", rec.IVs.Sum()),
		logger.Bool("shiny", rec.Shiny),
	)
	c.setCurrent(&rec)
}

func (c *Client) setCurrent(rec *model.Record) {
	c.mu.Lock()
	c.current = rec
	c.mu.Unlock()

	for _, fn := range c.onRecord {
		fn(rec)
	}
}

func (c *Client) setState(s ConnectionState) {
	c.mu.Lock()
	changed := c.state != s
	c.state = s
	c.mu.Unlock()

	if !changed {
		return
	}
	metrics.UpdateConnectionState(int(s))
	for _, fn := range c.onState {
		fn(s)
	}
}
