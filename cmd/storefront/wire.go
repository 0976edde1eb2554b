package main

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Skotchmaster/mercadotech/internal/cart"
	"github.com/Skotchmaster/mercadotech/internal/models"
	"github.com/Skotchmaster/mercadotech/internal/session"
	"github.com/Skotchmaster/mercadotech/internal/storage"
	"github.com/Skotchmaster/mercadotech/pkg/apiclient"
)

type storefront struct {
	client   *apiclient.Client
	sessions *session.Store
	cart     *cart.Store
	log      zerolog.Logger
}

// wire builds the session and cart stores over kv. The cart subscribes to
// session transitions here, before restore runs, so a restored session
// reconciles the persisted anonymous cart.
func wire(client *apiclient.Client, kv storage.KV, log zerolog.Logger) *storefront {
	sessions := session.NewStore(client, kv, log)
	client.UseTokenSource(sessions)

	shopCart := cart.New(client, kv, log)
	sessions.Subscribe(shopCart.OnSessionChange)
	sessions.Subscribe(func(_ context.Context, prev, next *models.Principal) {
		logTransition(log, prev, next)
	})
	shopCart.Subscribe(func(items []models.CartLineItem) {
		log.Debug().Int("items", len(items)).Msg("cart changed")
	})

	return &storefront{client: client, sessions: sessions, cart: shopCart, log: log}
}

// restore loads the persisted cart and then the persisted session. The guard
// answers "loading" until it returns.
func (s *storefront) restore(ctx context.Context) *models.Principal {
	s.cart.Load(ctx)
	p := s.sessions.Restore(ctx)
	if p == nil {
		s.log.Info().Msg("no stored session")
	}
	return p
}

func logTransition(log zerolog.Logger, prev, next *models.Principal) {
	switch {
	case next == nil:
		log.Info().Str("user_id", prev.ID).Msg("signed out")
	case prev == nil || prev.ID != next.ID:
		log.Info().Str("user_id", next.ID).Str("role", string(next.Role)).Msg("signed in")
	}
}
