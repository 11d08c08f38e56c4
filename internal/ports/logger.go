package ports

import "github.com/canlab/cansim/pkg/log"

// Logger re-exports the shared logging abstraction so internal packages
// depend on ports alone.
type Logger = log.Logger

// Field re-exports the structured logging field type.
type Field = log.Field

// Field constructors re-exported for convenience.
var (
	Str      = log.String
	Int      = log.Int
	Uint32   = log.Uint32
	Uint64   = log.Uint64
	Float64  = log.Float64
	Bool     = log.Bool
	Duration = log.Duration
	Time     = log.Time
	Err      = log.Err
	Any      = log.Any
)
