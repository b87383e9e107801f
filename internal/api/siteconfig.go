package api

import (
	"context"

	"github.com/subdock/subdock-cli/internal/gateway"
	"github.com/subdock/subdock-cli/internal/models"
)

type SiteConfig struct {
	gw *gateway.Gateway
}

func NewSiteConfig(gw *gateway.Gateway) *SiteConfig {
	return &SiteConfig{gw: gw}
}

// Get fetches the public, unauthenticated site configuration.
func (c *SiteConfig) Get(ctx context.Context) (models.PublicConfig, error) {
	var cfg models.PublicConfig
	if err := c.gw.Get(ctx, "/config", &cfg); err != nil {
		return models.PublicConfig{}, err
	}
	return cfg, nil
}
