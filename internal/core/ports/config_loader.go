package ports

import "go.trai.ch/roast/internal/core/domain"

// ConfigLoader defines the interface for loading run settings.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the settings from path.
	// When required is false a missing file yields default settings.
	Load(path string, required bool) (domain.Settings, error)
}
