// Package model contains domain models passed between layers.
package model

// IVs holds the six individual values of a snapshot.
type IVs struct {
	HP  int `json:"hp"`
	Atk int `json:"atk"`
	Def int `json:"def"`
	SpA int `json:"spa"`
	SpD int `json:"spd"`
	Spe int `json:"spe"`
}

// Sum returns the total of the six individual values.
func (iv IVs) Sum() int {
	return iv.HP + iv.Atk + iv.Def + iv.SpA + iv.SpD + iv.Spe
}

// RawPayload is one inbound wire message. Every field is optional; the
// shape is the union of what every supported game variant might send.
type RawPayload struct {
	// Clear, when true, asks the receiver to drop the current record.
	Clear *bool `json:"clear,omitempty"`

	Type        *string `json:"type,omitempty"`
	Game        *string `json:"game,omitempty"`
	PID         *uint32 `json:"pid,omitempty"`
	Species     *string `json:"species,omitempty"`
	SpeciesID   *int    `json:"species_id,omitempty"`
	Level       *int    `json:"level,omitempty"`
	Exp         *int    `json:"exp,omitempty"`
	Nature      *string `json:"nature,omitempty"`
	Ability     *string `json:"ability,omitempty"`
	AbilitySlot *int    `json:"ability_slot,omitempty"`
	Gender      *string `json:"gender,omitempty"`
	IVs         *IVs    `json:"ivs,omitempty"`
	HPType      *string `json:"hp_type,omitempty"`
	HPPower     *int    `json:"hp_power,omitempty"`
	Shiny       *bool   `json:"shiny,omitempty"`
	ShinyType   *string `json:"shiny_type,omitempty"`
}

// IsClear reports whether the payload is the clear sentinel.
func (p *RawPayload) IsClear() bool {
	return p.Clear != nil && *p.Clear
}
