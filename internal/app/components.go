package app

import "go.trai.ch/roast/internal/core/ports"

// Components holds the wired application and the services main needs directly.
type Components struct {
	App    *App
	Logger ports.Logger
}
