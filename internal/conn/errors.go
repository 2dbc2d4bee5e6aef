package conn

import (
	"errors"

	"github.com/Epawse/geocommander/internal/action"
)

func isUnknownActionType(err error) bool {
	return errors.Is(err, action.ErrUnknownType)
}
