package environment

import (
	"errors"

	"github.com/boristopalov/riverswim/pkg/config"
)

var (
	// ErrInvalidConfig marks parameters that cannot form a valid kernel.
	ErrInvalidConfig = config.ErrInvalidConfig
	// ErrInvalidAction is returned by Step for actions outside {0, 1}.
	ErrInvalidAction = errors.New("invalid action: must be 0 or 1")
)
