package algorithms

import (
	"io"
	"log/slog"

	"flowkit/pkg/apperror"
)

// DefaultAlpha is the ε reduction factor applied after every scaling phase
// of the min-cost engine when the caller does not override it.
const DefaultAlpha = 2

// Options configures engine construction.
//
// The zero value is not usable directly; DefaultOptions() supplies a
// discard logger and the standard scaling factor. Options can be chained:
//
//	opts := algorithms.DefaultOptions().
//	    WithLogger(log).
//	    WithAlpha(4)
type Options struct {
	// Logger receives structured progress events (phase transitions,
	// push/relabel totals) at debug level. Never nil after
	// DefaultOptions; the algorithms stay silent with the default.
	Logger *slog.Logger

	// Alpha is the geometric ε-decrease rate per cost-scaling phase.
	// Must be > 1; larger values mean fewer, coarser phases.
	// Only the min-cost engine reads it.
	Alpha int64
}

// DefaultOptions returns options with a discard logger and Alpha = 2.
func DefaultOptions() *Options {
	return &Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Alpha:  DefaultAlpha,
	}
}

// WithLogger sets the logger and returns the options for chaining.
func (o *Options) WithLogger(logger *slog.Logger) *Options {
	if logger != nil {
		o.Logger = logger
	}
	return o
}

// WithAlpha sets the ε reduction factor and returns the options for chaining.
func (o *Options) WithAlpha(alpha int64) *Options {
	o.Alpha = alpha
	return o
}

// validate normalizes nil options and checks the alpha range.
func (o *Options) validate() (*Options, error) {
	if o == nil {
		return DefaultOptions(), nil
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.Alpha <= 1 {
		return nil, apperror.New(apperror.CodeInvalidAlpha,
			"alpha must be greater than 1")
	}
	return o, nil
}
