package adapter

import "github.com/rotisserie/eris"

var (
	// ErrUnknownAdapter is returned when a registry lookup misses.
	ErrUnknownAdapter = eris.New("unknown adapter")

	// ErrInvalidOrdering is returned when signals are not in emit order.
	ErrInvalidOrdering = eris.New("signals are not in deterministic order")
)

func orderingError(index int) error {
	return eris.Wrapf(ErrInvalidOrdering, "at position %d", index)
}
