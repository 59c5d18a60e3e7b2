package normalize

// Option applies a configuration option to the Registry.
type Option func(*Registry)

// WithAdapter registers an additional game-variant adapter.
func WithAdapter(a Adapter) Option {
	return func(r *Registry) {
		if a != nil {
			r.adapters[a.ID()] = a
		}
	}
}

// WithFallback replaces the default adapter used for untagged or
// unregistered variants.
func WithFallback(a Adapter) Option {
	return func(r *Registry) {
		if a != nil {
			r.adapters[a.ID()] = a
			r.fallback = a
		}
	}
}
