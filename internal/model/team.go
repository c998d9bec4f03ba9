package model

import "time"

type Team struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	Pokemon     []*Pokemon `json:"pokemon"`

	// PokemonCount is computed per response, never persisted.
	PokemonCount int `json:"pokemon_count"`
}
