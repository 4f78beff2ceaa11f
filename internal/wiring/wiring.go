// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/roast/internal/adapters/coffee"
	_ "go.trai.ch/roast/internal/adapters/config"
	_ "go.trai.ch/roast/internal/adapters/fs"
	_ "go.trai.ch/roast/internal/adapters/logger"
	_ "go.trai.ch/roast/internal/adapters/telemetry"
	_ "go.trai.ch/roast/internal/adapters/watcher"
	// Register app nodes.
	_ "go.trai.ch/roast/internal/app"
)
