package ports

import "go.trai.ch/roast/internal/core/domain"

// SourceResolver expands file sets into concrete source paths.
//
//go:generate mockgen -source=resolver.go -destination=mocks/mock_resolver.go -package=mocks
type SourceResolver interface {
	// ResolveSources returns the sources selected by sets, in declaration order,
	// sorted within each set and without duplicates.
	ResolveSources(sets []domain.FileSet) ([]string, error)
}
