package neat

import (
	"fmt"

	"github.com/pkg/errors"
)

// Structural mutation errors. These are routine outcomes of topology mutation:
// Mutate discards them, direct callers decide what to do.
var (
	ErrInvalidEndpoint     = errors.New("invalid connection endpoint")
	ErrDuplicateConnection = errors.New("duplicate connection")
	ErrCycleRejected       = errors.New("connection would create a cycle in a feed-forward genome")
	ErrDisabledConnection  = errors.New("cannot add a node to a disabled connection")
	ErrCannotRemoveIO      = errors.New("cannot remove an input or output node")
	ErrInvalidInput        = errors.New("gene not present in genome")
	ErrDuplicateNode       = errors.New("node marking already present in genome")
)

// ErrInvalidSnapshot reports a serialized genome that violates genome invariants.
var ErrInvalidSnapshot = errors.New("invalid genome snapshot")

// ErrConfig is matched by every ConfigError.
var ErrConfig = errors.New("config error")

// ConfigError reports an invalid genome or network configuration.
// It is fatal at genome construction and never recovered internally.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrConfig) match any ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

func configErrorf(field, format string, args ...interface{}) error {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsStructural reports whether err is one of the recoverable structural mutation errors.
func IsStructural(err error) bool {
	for _, target := range []error{
		ErrInvalidEndpoint, ErrDuplicateConnection, ErrCycleRejected, ErrDisabledConnection,
		ErrCannotRemoveIO, ErrInvalidInput, ErrDuplicateNode,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
