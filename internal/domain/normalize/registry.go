package normalize

import (
	"github.com/pattarpon/pokescan/internal/domain/dex"
	"github.com/pattarpon/pokescan/internal/domain/model"
)

// DefaultGameID is the variant served when a payload carries no game tag
// or an unregistered one.
const DefaultGameID = "emerald_us_eu"

// Registry dispatches payloads to the adapter registered under their
// game-variant tag, falling back to a mandatory default adapter.
type Registry struct {
	adapters map[string]Adapter
	fallback Adapter
}

// NewRegistry creates a registry with the default adapter installed.
func NewRegistry(opts ...Option) *Registry {
	def := NewDefaultAdapter(DefaultGameID)
	r := &Registry{
		adapters: map[string]Adapter{def.ID(): def},
		fallback: def,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds an adapter under its own variant tag, replacing any
// previous registration for that tag.
func (r *Registry) Register(a Adapter) {
	r.adapters[a.ID()] = a
}

// Normalize selects the adapter for the payload's game tag and delegates.
func (r *Registry) Normalize(raw *model.RawPayload, d *dex.Dex) (model.Record, bool) {
	tag := r.fallback.ID()
	if raw.Game != nil {
		tag = *raw.Game
	}
	adapter, ok := r.adapters[tag]
	if !ok {
		adapter = r.fallback
	}
	return adapter.Normalize(raw, d)
}
