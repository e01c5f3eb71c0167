package router

import (
	"context"
	"errors"
	"fmt"

	"github.com/rickchristie/orchestra"
)

// Chain routes with a primary strategy and switches to a secondary one when the
// primary fails to dispatch.
type Chain struct {
	primary   Router
	secondary Router
}

// WithFallback returns a router that uses secondary whenever primary returns an error
// matching orchestra.ErrDispatchFailure. Other errors, such as context cancellation,
// are returned unchanged.
func WithFallback(primary, secondary Router) *Chain {
	return &Chain{primary: primary, secondary: secondary}
}

// Route implements Router. The secondary decision's Reasoning is prefixed with the
// primary failure.
func (c *Chain) Route(ctx context.Context, request string) (*Decision, error) {
	decision, err := c.primary.Route(ctx, request)
	if err == nil {
		return decision, nil
	}
	if !errors.Is(err, orchestra.ErrDispatchFailure) {
		return nil, err
	}

	decision, secondaryErr := c.secondary.Route(ctx, request)
	if secondaryErr != nil {
		return nil, errors.Join(err, secondaryErr)
	}
	decision.Reasoning = fmt.Sprintf("primary router failed (%v); %s", err, decision.Reasoning)
	return decision, nil
}

var _ Router = (*Chain)(nil)
