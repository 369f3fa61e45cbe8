package core

import "errors"

var (
	// ErrOutOfBounds is returned when a coordinate lies outside the grid.
	ErrOutOfBounds = errors.New("coordinate out of bounds")

	// ErrNotAdjacent is returned when a swap names two cells that do not
	// share an edge.
	ErrNotAdjacent = errors.New("cells are not adjacent")

	// ErrEmptyCell is returned when a swap names a cell without a tile.
	// Tiles only move into holes by falling.
	ErrEmptyCell = errors.New("cell is empty")

	// ErrNoMatch is returned in strict mode when a swap would not form a
	// match. The swap is reverted.
	ErrNoMatch = errors.New("swap produces no match")

	// ErrGenerationImpossible is returned when the no-pre-triple rule leaves
	// no candidate type for a cell. Only possible with fewer than three kinds.
	ErrGenerationImpossible = errors.New("no tile type satisfies generation rule")

	// ErrResolutionDidNotTerminate is returned when the cascade exceeds the
	// configured pass cap. The board is left in its state at the cap.
	ErrResolutionDidNotTerminate = errors.New("cascade resolution did not terminate")

	// ErrInvalidConfig is returned for unusable board dimensions or palettes.
	ErrInvalidConfig = errors.New("invalid board configuration")
)
