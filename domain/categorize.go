package domain

import (
	"errors"

	"github.com/ludo-technologies/cflow/internal/cfg"
	"github.com/ludo-technologies/cflow/internal/ir"
)

// CategorizeLoweringError turns a raw error from internal/ir or
// internal/cfg into a DomainError, the same way the teacher's
// service.ErrorCategorizer gives every analyzer failure a stable
// category — except grounded on errors.Is over the packages' own typed
// sentinels rather than matching substrings of Error() text, since those
// sentinels already exist and pattern matching would only be guessing at
// what they say.
func CategorizeLoweringError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ir.ErrNoEnclosingLoop):
		return NewNoEnclosingLoopError(err)
	case errors.Is(err, ir.ErrLoopNotEnclosing):
		return NewLoopNotEnclosingError(err)
	case errors.Is(err, cfg.ErrInvalidLoopTarget):
		return NewInvalidLoopTargetError(err)
	case errors.Is(err, ir.ErrUnknownConstruct), errors.Is(err, cfg.ErrUnknownConstruct):
		return NewUnknownConstructError(err)
	default:
		return NewInternalError("lowering failed", err)
	}
}
