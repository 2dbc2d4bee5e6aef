package dispatch

import (
	"errors"

	"github.com/Epawse/geocommander/internal/action"
)

// ErrLocationUnknown is returned when a catalog lookup fails.
var ErrLocationUnknown = errors.New("unknown location")

func isUnknownType(err error) bool {
	return errors.Is(err, action.ErrUnknownType)
}
