// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/roast/internal/core/domain"
)

// Compiler turns CoffeeScript source text into JavaScript.
//
//go:generate mockgen -source=compiler.go -destination=mocks/mock_compiler.go -package=mocks
type Compiler interface {
	// Compile returns the JavaScript for source.
	// It is the only operation that can fail with domain.ErrCompilationFailed.
	Compile(ctx context.Context, source string, opts domain.CompileOptions) (string, error)
}
