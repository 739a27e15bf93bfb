package xoapi

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"nathanbeddoewebdev/xostats/internal/stats/domain"
)

// SignIn authenticates the session with an XO authentication token.
func (c *Client) SignIn(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("session.signInWithToken: %w: empty token", domain.ErrUnauthorized)
	}
	return c.Call(ctx, "session.signInWithToken", map[string]string{"token": token}, nil)
}

// HostStats fetches the stats of a host at the given granularity.
func (c *Client) HostStats(ctx context.Context, id string, granularity domain.Granularity) (*domain.StatsResult, error) {
	var res domain.StatsResult
	params := map[string]any{"host": id, "granularity": granularity}
	if err := c.Call(ctx, "host.stats", params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// VMStats fetches the stats of a VM at the given granularity.
func (c *Client) VMStats(ctx context.Context, id string, granularity domain.Granularity) (*domain.StatsResult, error) {
	var res domain.StatsResult
	params := map[string]any{"id": id, "granularity": granularity}
	if err := c.Call(ctx, "vm.stats", params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// RunningHosts lists the hosts whose power state is Running.
func (c *Client) RunningHosts(ctx context.Context) ([]domain.Object, error) {
	return c.runningObjects(ctx, domain.ObjectHost)
}

// RunningVMs lists the VMs whose power state is Running.
func (c *Client) RunningVMs(ctx context.Context) ([]domain.Object, error) {
	return c.runningObjects(ctx, domain.ObjectVM)
}

// runningObjects returns objects sorted by label, then ID.
func (c *Client) runningObjects(ctx context.Context, typ domain.ObjectType) ([]domain.Object, error) {
	params := map[string]any{
		"filter": map[string]string{
			"type":        string(typ),
			"power_state": domain.PowerStateRunning,
		},
	}

	var byID map[string]domain.Object
	if err := c.Call(ctx, "xo.getAllObjects", params, &byID); err != nil {
		return nil, err
	}

	objects := make([]domain.Object, 0, len(byID))
	for id, obj := range byID {
		if obj.ID == "" {
			obj.ID = id
		}
		// Older servers may ignore part of the filter.
		if obj.Type != typ || !obj.Running() {
			continue
		}
		objects = append(objects, obj)
	}

	slices.SortFunc(objects, func(a, b domain.Object) int {
		return cmp.Or(
			cmp.Compare(a.Label(), b.Label()),
			cmp.Compare(a.ID, b.ID),
		)
	})
	return objects, nil
}
