package llm

import (
	"context"
	"errors"
	"fmt"
)

// Gateway routes requests to a client per model tier. Tiers that share a
// model id share one client.
type Gateway struct {
	clients map[ModelTier]Client
	owned   []Client
}

// NewGateway builds one client per distinct model id in cfg and wraps each
// with mws.
func NewGateway(ctx context.Context, cfg *Config, creds Credentials, mws ...Middleware) (*Gateway, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	g := &Gateway{clients: make(map[ModelTier]Client)}
	byID := make(map[string]Client)
	for _, tier := range []ModelTier{TierLite, TierStandard, TierAdvanced} {
		id := cfg.GetModel(tier)
		if id == "" {
			_ = g.Close()
			return nil, &ConfigError{Message: fmt.Sprintf("no model configured for tier %s", tier)}
		}
		if c, ok := byID[id]; ok {
			g.clients[tier] = c
			continue
		}
		c, err := NewClientFromID(ctx, id, creds)
		if err != nil {
			_ = g.Close()
			return nil, err
		}
		c = Wrap(c, mws...)
		byID[id] = c
		g.owned = append(g.owned, c)
		g.clients[tier] = c
	}
	return g, nil
}

// NewStaticGateway serves every tier from c. Used by tests and tools.
func NewStaticGateway(c Client) *Gateway {
	return &Gateway{
		clients: map[ModelTier]Client{TierLite: c, TierStandard: c, TierAdvanced: c},
		owned:   []Client{c},
	}
}

// Client returns the client for a tier, falling back to standard.
func (g *Gateway) Client(tier ModelTier) Client {
	if c, ok := g.clients[tier]; ok {
		return c
	}
	return g.clients[TierStandard]
}

// Complete runs messages against the tier's model.
func (g *Gateway) Complete(ctx context.Context, tier ModelTier, messages []Message) (string, error) {
	c := g.Client(tier)
	if c == nil {
		return "", &ConfigError{Message: fmt.Sprintf("no client for tier %s", tier)}
	}
	return c.Complete(ctx, messages)
}

// Close releases every owned client.
func (g *Gateway) Close() error {
	var errs []error
	for _, c := range g.owned {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
