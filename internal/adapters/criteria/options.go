package criteria

import (
	"github.com/pattarpon/pokescan/pkg/logger"
)

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithPath overrides the persistence location.
func WithPath(path string) Option {
	return func(s *Store) {
		if path != "" {
			s.path = path
		}
	}
}

// WithLogger sets a custom logger for the store.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}
