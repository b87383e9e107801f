package api

import (
	"context"

	"github.com/subdock/subdock-cli/internal/gateway"
	"github.com/subdock/subdock-cli/internal/models"
)

// Notification channels accepted by the settings test-notify endpoint.
const (
	ChannelTelegram = "telegram"
	ChannelBark     = "bark"
)

type Settings struct {
	gw *gateway.Gateway
}

func NewSettings(gw *gateway.Gateway) *Settings {
	return &Settings{gw: gw}
}

// Get returns the settings in wire form; callers convert with Structured()
// when they need the hour set.
func (s *Settings) Get(ctx context.Context) (models.SettingsWire, error) {
	var w models.SettingsWire
	if err := s.gw.Get(ctx, "/settings", &w); err != nil {
		return models.SettingsWire{}, err
	}
	return w, nil
}

func (s *Settings) Update(ctx context.Context, w models.SettingsWire) error {
	return s.gw.Put(ctx, "/settings", w, nil)
}

func (s *Settings) TestNotify(ctx context.Context, channel string) error {
	return s.gw.Post(ctx, "/settings/test-notify", models.TestNotifyRequest{Type: channel}, nil)
}
