// Package normalize maps raw wire payloads into canonical records using
// the reference dex. A registry of per-game-variant adapters performs the
// mapping; unknown variants fall back to a default adapter.
package normalize

import (
	"github.com/google/uuid"

	"github.com/pattarpon/pokescan/internal/domain/dex"
	"github.com/pattarpon/pokescan/internal/domain/model"
)

// The literal used when neither the payload nor the dex yields a name.
const unknownSpeciesName = "Unknown"

// Adapter normalizes one game variant's payloads. Normalize reports false
// when the payload has no resolvable species; that is the only failure
// mode, every other field degrades to its unknown form instead.
type Adapter interface {
	ID() string
	Normalize(raw *model.RawPayload, d *dex.Dex) (model.Record, bool)
}

// DefaultAdapter implements the resolution rules shared by the mainline
// Gen III games. Field priority is payload first, then dex derivation,
// then a hardcoded default.
type DefaultAdapter struct {
	id string
}

// NewDefaultAdapter creates an adapter registered under the given variant tag.
func NewDefaultAdapter(id string) *DefaultAdapter {
	return &DefaultAdapter{id: id}
}

// ID returns the game-variant tag this adapter serves.
func (a *DefaultAdapter) ID() string { return a.id }

// Normalize resolves every canonical field from the payload and dex.
func (a *DefaultAdapter) Normalize(raw *model.RawPayload, d *dex.Dex) (model.Record, bool) {
	var species dex.Species
	var haveSpecies bool
	if raw.SpeciesID != nil {
		species, haveSpecies = d.SpeciesByID(*raw.SpeciesID)
	}

	speciesName := unknownSpeciesName
	switch {
	case raw.Species != nil:
		speciesName = *raw.Species
	case haveSpecies:
		speciesName = species.Name
	}

	// The species id is mandatory: explicit id wins, else the name must
	// resolve in the dex. Without either there is no record.
	speciesID := 0
	switch {
	case raw.SpeciesID != nil:
		speciesID = *raw.SpeciesID
	default:
		byName, ok := d.SpeciesByName(speciesName)
		if !ok {
			return model.Record{}, false
		}
		speciesID = byName.ID
	}

	var ability *string
	switch {
	case raw.Ability != nil:
		ability = raw.Ability
	case raw.AbilitySlot != nil && haveSpecies:
		if slot := *raw.AbilitySlot; slot >= 0 && slot < len(species.Abilities) {
			name := species.Abilities[slot]
			ability = &name
		}
	}

	level := raw.Level
	if level == nil && raw.Exp != nil {
		if derived, ok := d.LevelForExp(*raw.Exp, speciesID); ok {
			level = &derived
		}
	}

	var baseStats *model.BaseStats
	if haveSpecies && species.BaseStats != nil {
		baseStats = &model.BaseStats{
			HP:  species.BaseStats["hp"],
			Atk: species.BaseStats["atk"],
			Def: species.BaseStats["def"],
			SpA: species.BaseStats["spa"],
			SpD: species.BaseStats["spd"],
			Spe: species.BaseStats["spe"],
		}
	}

	ivs := model.IVs{}
	if raw.IVs != nil {
		ivs = *raw.IVs
	}

	shiny := raw.Shiny != nil && *raw.Shiny

	return model.Record{
		ID:          uuid.New(),
		PID:         raw.PID,
		SpeciesID:   speciesID,
		SpeciesName: speciesName,
		Level:       level,
		Nature:      raw.Nature,
		Ability:     ability,
		AbilitySlot: raw.AbilitySlot,
		Gender:      raw.Gender,
		IVs:         ivs,
		BaseStats:   baseStats,
		HPType:      raw.HPType,
		HPPower:     raw.HPPower,
		Shiny:       shiny,
		ShinyType:   raw.ShinyType,
		Game:        raw.Game,
	}, true
}
