package api

import (
	"context"
	"fmt"

	"github.com/subdock/subdock-cli/internal/gateway"
	"github.com/subdock/subdock-cli/internal/models"
)

type Subscriptions struct {
	gw *gateway.Gateway
}

func NewSubscriptions(gw *gateway.Gateway) *Subscriptions {
	return &Subscriptions{gw: gw}
}

func (s *Subscriptions) List(ctx context.Context) ([]models.Subscription, error) {
	var subs []models.Subscription
	if err := s.gw.Get(ctx, "/subscriptions", &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// Create sends the record and returns the server's stored copy, id included.
func (s *Subscriptions) Create(ctx context.Context, sub models.Subscription) (models.Subscription, error) {
	var created models.Subscription
	if err := s.gw.Post(ctx, "/subscriptions", sub, &created); err != nil {
		return models.Subscription{}, err
	}
	return created, nil
}

func (s *Subscriptions) Update(ctx context.Context, id int64, sub models.Subscription) (models.Subscription, error) {
	var updated models.Subscription
	if err := s.gw.Put(ctx, fmt.Sprintf("/subscriptions/%d", id), sub, &updated); err != nil {
		return models.Subscription{}, err
	}
	return updated, nil
}

func (s *Subscriptions) Delete(ctx context.Context, id int64) error {
	return s.gw.Delete(ctx, fmt.Sprintf("/subscriptions/%d", id))
}

// TestNotify asks the server to fire a one-off notification for the record
// without changing any stored state.
func (s *Subscriptions) TestNotify(ctx context.Context, id int64) error {
	return s.gw.Post(ctx, fmt.Sprintf("/subscriptions/%d/test-notify", id), nil, nil)
}
