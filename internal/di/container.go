// Package di wires the gates service together with Wire.
//
// wire.go holds the injector declaration and wire_gen.go its generated
// implementation. Provider functions live in providers.go.
package di

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"gates-backend/internal/config"
	"gates-backend/internal/domain/businesshours"
	"gates-backend/internal/infrastructure/awsclient"
	"gates-backend/internal/service/gates"
)

// Container holds the assembled application.
type Container struct {
	Config  *config.Config
	Logger  *zap.Logger
	Clients *awsclient.Clients
	// Hours is the live business-hours switch. Config reloads swap its week.
	Hours   *businesshours.Switch
	Service *gates.Service
	Router  *chi.Mux
}

// ApplyConfig hot-swaps the settings that can change without a restart.
func (c *Container) ApplyConfig(cfg *config.Config) {
	c.Hours.SetWeek(cfg.BusinessHours.Week)
	c.Logger.Info("business week reloaded", zap.String("source", cfg.Source()))
}
