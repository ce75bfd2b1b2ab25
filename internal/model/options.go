package model

import (
	"github.com/go-logr/logr"
	"k8s.io/klog/v2"
)

// ResolveOptions configures model resolution.
type ResolveOptions struct {
	// Name of the resolved model (default: "sequential" or "model").
	Name string

	// StrictUnusedInputs turns unused functional inputs into a resolution
	// error instead of a warning. Sequential models are always strict.
	StrictUnusedInputs bool

	// Logger receives resolution traces and warnings. Nil means
	// klog.Background(); pass logr.Discard() to drop everything.
	Logger *logr.Logger
}

// DefaultResolveOptions returns default resolution options.
func DefaultResolveOptions() ResolveOptions {
	return ResolveOptions{
		StrictUnusedInputs: false,
	}
}

func pickOptions(defaultName string, opts []ResolveOptions) ResolveOptions {
	opt := DefaultResolveOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}
	if opt.Name == "" {
		opt.Name = defaultName
	}
	if opt.Logger == nil {
		log := klog.Background()
		opt.Logger = &log
	}
	return opt
}
