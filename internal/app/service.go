// Package service wires the reference dex, the catch criteria store, the
// stream client, and the rule engine into one running scanner.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/pattarpon/pokescan/internal/adapters/criteria"
	"github.com/pattarpon/pokescan/internal/adapters/stream"
	"github.com/pattarpon/pokescan/internal/domain/dex"
	"github.com/pattarpon/pokescan/internal/domain/model"
	"github.com/pattarpon/pokescan/internal/domain/normalize"
	"github.com/pattarpon/pokescan/internal/domain/rules"
	"github.com/pattarpon/pokescan/pkg/logger"
	"github.com/pattarpon/pokescan/pkg/metrics"
)

// Service owns every component of the scanner. It evaluates the active
// catch criteria against each record the stream publishes and exposes
// the latest record, verdict, and connection state.
type Service struct {
	mu sync.RWMutex

	// Core components
	dex      *dex.Dex
	store    *criteria.Store
	registry *normalize.Registry
	engine   *rules.Engine
	client   *stream.Client

	// Configuration
	speciesPath    string
	growthPath     string
	criteriaPath   string
	host           string
	port           int
	portFile       string
	reconnectDelay time.Duration
	readBufferSize int
	dialer         stream.Dialer

	// Observers; registered before Start, invoked from the stream's
	// owner goroutine.
	onVerdict []func(*model.Record, rules.Verdict)

	// State
	started bool
	verdict *rules.Verdict

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithHost sets the emulator host to dial.
func WithHost(host string) Option {
	return func(s *Service) {
		if host != "" {
			s.host = host
		}
	}
}

// WithPort sets the emulator port to dial.
func WithPort(port int) Option {
	return func(s *Service) {
		if port > 0 {
			s.port = port
		}
	}
}

// WithPortFile names a discovery file that overrides the port.
func WithPortFile(path string) Option {
	return func(s *Service) {
		s.portFile = path
	}
}

// WithReconnectDelay sets the delay between connection attempts.
func WithReconnectDelay(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.reconnectDelay = d
		}
	}
}

// WithReadBufferSize sets the socket read buffer size.
func WithReadBufferSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.readBufferSize = n
		}
	}
}

// WithSpeciesPath points at the species dataset file.
func WithSpeciesPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.speciesPath = path
		}
	}
}

// WithGrowthRatesPath points at the growth-rate dataset file.
func WithGrowthRatesPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.growthPath = path
		}
	}
}

// WithCriteriaPath overrides the catch criteria document location.
func WithCriteriaPath(path string) Option {
	return func(s *Service) {
		s.criteriaPath = path
	}
}

// WithDialer overrides the stream transport dialer. Used in tests.
func WithDialer(d stream.Dialer) Option {
	return func(s *Service) {
		s.dialer = d
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		speciesPath:    "data/pokemon_data.json",
		growthPath:     "data/growth_rates.json",
		host:           "127.0.0.1",
		port:           9876,
		reconnectDelay: 2 * time.Second,
		readBufferSize: 4096,
		logger:         nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// OnVerdict registers an observer called after every evaluation. The
// record is nil when the display was cleared. Must be called before
// Start.
func (s *Service) OnVerdict(fn func(*model.Record, rules.Verdict)) {
	s.onVerdict = append(s.onVerdict, fn)
}

// Start initializes the components and opens the stream.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting scanner service...")

	// Initialize components
	s.dex = dex.Load(ctx, s.speciesPath, s.growthPath)

	storeOpts := []criteria.Option{criteria.WithLogger(s.logger.Named("criteria"))}
	if s.criteriaPath != "" {
		storeOpts = append(storeOpts, criteria.WithPath(s.criteriaPath))
	}
	s.store = criteria.New(storeOpts...)
	s.store.Load(ctx)

	s.registry = normalize.NewRegistry()
	s.engine = rules.NewEngine()

	clientOpts := []stream.Option{
		stream.WithHost(s.host),
		stream.WithPort(s.port),
		stream.WithReconnectDelay(s.reconnectDelay),
		stream.WithReadBufferSize(s.readBufferSize),
		stream.WithLogger(s.logger.Named("stream")),
	}
	if s.portFile != "" {
		clientOpts = append(clientOpts, stream.WithPortFile(s.portFile))
	}
	if s.dialer != nil {
		clientOpts = append(clientOpts, stream.WithDialer(s.dialer))
	}
	s.client = stream.New(s.dex, s.registry, clientOpts...)
	s.client.OnRecord(s.handleRecord)

	s.client.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "scanner service started",
		logger.String("addr", s.client.Addr()),
		logger.Int("species", s.dex.SpeciesCount()),
		logger.Int("growthTables", s.dex.GrowthTableCount()),
	)

	return nil
}

// Stop gracefully shuts down the service. The client is stopped outside
// s.mu: its owner goroutine delivers records through handleRecord, which
// takes s.mu, so waiting for it under the lock would deadlock.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	client := s.client
	s.mu.Unlock()

	s.logger.Info(context.Background(), "stopping scanner service...")

	if client != nil {
		client.Stop()
	}

	s.logger.Info(context.Background(), "scanner service stopped")
}

// handleRecord runs on the stream's owner goroutine for every published
// record change, including the nil record from a clear message.
func (s *Service) handleRecord(rec *model.Record) {
	ctx := context.Background()

	if rec == nil {
		s.mu.Lock()
		s.verdict = nil
		s.mu.Unlock()
		for _, fn := range s.onVerdict {
			fn(nil, rules.Skip("No Pokemon on display"))
		}
		return
	}

	v := s.evaluate(ctx, rec)

	s.mu.Lock()
	s.verdict = &v
	s.mu.Unlock()

	s.logger.Info(ctx, "verdict",
		logger.String("pokemon", rec.Label()),
		logger.String("kind", v.Kind.String()),
		logger.String("reason", v.Reason),
	)

	for _, fn := range s.onVerdict {
		fn(rec, v)
	}
}

func (s *Service) evaluate(ctx context.Context, rec *model.Record) rules.Verdict {
	start := time.Now()
	v := s.engine.Evaluate(rec, s.store.Snapshot())
	metrics.RecordEvaluateLatency(float64(time.Since(start).Nanoseconds()) / 1e6)
	metrics.RecordVerdict(v.Kind.String())
	return v
}

// CurrentRecord returns the latest normalized record, or nil.
func (s *Service) CurrentRecord() *model.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.client == nil {
		return nil
	}
	return s.client.CurrentRecord()
}

// CurrentVerdict returns the verdict for the current record, or nil
// when nothing is on display.
func (s *Service) CurrentVerdict() *rules.Verdict {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.verdict == nil {
		return nil
	}
	v := *s.verdict
	return &v
}

// ConnectionState reports the stream client's state.
func (s *Service) ConnectionState() stream.ConnectionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.client == nil {
		return stream.Disconnected
	}
	return s.client.State()
}

// criteriaStore returns the store, or nil before Start constructs it.
func (s *Service) criteriaStore() *criteria.Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store
}

// Criteria returns a snapshot of the active catch criteria.
func (s *Service) Criteria() rules.Criteria {
	store := s.criteriaStore()
	if store == nil {
		return rules.Criteria{}
	}
	return store.Snapshot()
}

// ProfileKeys lists the available profile keys in sorted order.
func (s *Service) ProfileKeys() []string {
	store := s.criteriaStore()
	if store == nil {
		return nil
	}
	return store.ProfileKeys()
}

// SetActiveProfile switches profiles, persists the document, and
// re-evaluates the record currently on display.
func (s *Service) SetActiveProfile(ctx context.Context, key string) error {
	store := s.criteriaStore()
	if store == nil {
		return ErrNotStarted
	}
	if err := store.SetActiveProfile(ctx, key); err != nil {
		return err
	}
	s.reevaluate(ctx)
	return nil
}

// SetSoundEnabled toggles the alert sound flag and persists it.
func (s *Service) SetSoundEnabled(ctx context.Context, enabled bool) error {
	store := s.criteriaStore()
	if store == nil {
		return ErrNotStarted
	}
	return store.SetSoundEnabled(ctx, enabled)
}

// ReloadCriteria re-reads the criteria document from disk and
// re-evaluates the record currently on display. The in-memory state is
// kept when the document cannot be read.
func (s *Service) ReloadCriteria(ctx context.Context) {
	store := s.criteriaStore()
	if store == nil {
		return
	}
	store.Reload(ctx)
	s.reevaluate(ctx)
}

func (s *Service) reevaluate(ctx context.Context) {
	rec := s.CurrentRecord()
	if rec == nil {
		return
	}

	v := s.evaluate(ctx, rec)

	s.mu.Lock()
	s.verdict = &v
	s.mu.Unlock()

	for _, fn := range s.onVerdict {
		fn(rec, v)
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started": s.started,
	}

	if s.started {
		stats["connectionState"] = s.client.State().String()
		stats["addr"] = s.client.Addr()
		stats["species"] = s.dex.SpeciesCount()
		stats["growthTables"] = s.dex.GrowthTableCount()
		stats["activeProfile"] = s.store.Snapshot().ActiveProfile
		if rec := s.client.CurrentRecord(); rec != nil {
			stats["currentPokemon"] = rec.Label()
		}
	}

	return stats
}
