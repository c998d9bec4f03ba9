// Package roster holds the pure slot rules for team rosters: level and
// position clamping, move-list trimming and next-slot computation. All
// functions are total — out-of-range input is coerced, never rejected.
package roster

const (
	MinLevel = 1
	MaxLevel = 100

	MinPosition = 1
	MaxPosition = 6

	// MaxTeamSize is the roster cap per team.
	MaxTeamSize = 6

	// MaxMoves is the move-list cap per roster entry.
	MaxMoves = 4

	// DefaultLevel is applied when a level is not supplied on add.
	DefaultLevel = 50
)

// ClampLevel coerces v into [MinLevel, MaxLevel].
func ClampLevel(v int) int {
	return max(MinLevel, min(MaxLevel, v))
}

// ClampPosition coerces v into [MinPosition, MaxPosition].
func ClampPosition(v int) int {
	return max(MinPosition, min(MaxPosition, v))
}

// TrimMoves returns the first MaxMoves elements of moves, order preserved.
// Duplicates are kept.
func TrimMoves(moves []string) []string {
	if len(moves) <= MaxMoves {
		return moves
	}
	return moves[:MaxMoves]
}

// NextFreePosition computes the slot for an entry added without an explicit
// position: one past the current maximum, capped at MaxPosition. Gaps left
// below the maximum by deletions are not reused. The result may still be
// occupied once the roster has gaps, so callers must check occupancy.
func NextFreePosition(maxPosition int) int {
	if maxPosition <= 0 {
		return MinPosition
	}
	return min(maxPosition+1, MaxPosition)
}

// FilterValidMoves drops empty entries, order preserved.
func FilterValidMoves(moves []string) []string {
	valid := make([]string, 0, len(moves))
	for _, m := range moves {
		if m != "" {
			valid = append(valid, m)
		}
	}
	return valid
}

// DisplayName returns the nickname when set, the species name otherwise.
func DisplayName(nickname *string, pokemonName string) string {
	if nickname != nil && *nickname != "" {
		return *nickname
	}
	return pokemonName
}
