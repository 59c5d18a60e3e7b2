package model

import (
	"fmt"

	"github.com/google/uuid"
)

// BaseStats holds the species base-stat sextuple copied from the dex.
type BaseStats struct {
	HP  int
	Atk int
	Def int
	SpA int
	SpD int
	Spe int
}

// Record is the canonical, normalized creature snapshot. SpeciesID is
// always resolvable; every other field may degrade to its zero or nil
// "unknown" form. Records are immutable after construction; ID is a
// fresh UUID per record so consumers can detect identity changes.
type Record struct {
	ID          uuid.UUID
	PID         *uint32
	SpeciesID   int
	SpeciesName string
	Level       *int
	Nature      *string
	Ability     *string
	AbilitySlot *int
	Gender      *string
	IVs         IVs
	BaseStats   *BaseStats
	HPType      *string
	HPPower     *int
	Shiny       bool
	ShinyType   *string
	Game        *string
}

// Label renders a short human-readable tag for logs, e.g. "Pikachu Lv.10".
func (r *Record) Label() string {
	if r.Level != nil {
		return fmt.Sprintf("%s Lv.%d", r.SpeciesName, *r.Level)
	}
	return fmt.Sprintf("%s Lv.?", r.SpeciesName)
}
