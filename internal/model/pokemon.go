package model

import "time"

type Pokemon struct {
	ID          int64          `json:"id"`
	TeamID      int64          `json:"team_id"`
	PokemonID   int            `json:"pokemon_id"`
	PokemonName string         `json:"pokemon_name"`
	Nickname    *string        `json:"nickname,omitempty"`
	Level       int            `json:"level"`
	Position    int            `json:"position"`
	Ability     *string        `json:"ability,omitempty"`
	Nature      *string        `json:"nature,omitempty"`
	HeldItem    *string        `json:"held_item,omitempty"`
	Moves       []string       `json:"moves"`
	Stats       map[string]int `json:"stats,omitempty"`
	SpriteURL   *string        `json:"sprite_url,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`

	// DisplayName is the nickname when set, the species name otherwise.
	// Computed on the way out, never stored.
	DisplayName string `json:"display_name"`
}
