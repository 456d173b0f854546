// Package hostinfo answers the environment questions the staging procedure
// branches on: is the network usable, and what release is the target.
// Both are read once at configure entry and carried as plain data from
// then on, so a mid-install network flap cannot desynchronize the branch
// taken during configure from the one taken during teardown.
package hostinfo

import (
	"context"

	"github.com/vishvananda/netlink"

	"github.com/installkit/aptstage/lib/logger"
)

// Environment is the read-only lookup surface consumed by the configurer.
type Environment interface {
	NetworkPresent(ctx context.Context) bool
	Codename(ctx context.Context, lsbReleasePath string) (string, error)
}

// Host reads the real host state.
type Host struct{}

func NewHost() *Host {
	return &Host{}
}

// NetworkPresent reports whether an IPv4 default route exists. A probe
// failure counts as no network: the offline staging branch is the safe one,
// it never relies on a reachable mirror.
func (h *Host) NetworkPresent(ctx context.Context) bool {
	routes, err := netlink.RouteList(nil, netlink.FAMILY_V4)
	if err != nil {
		logger.FromContext(ctx).WarnContext(ctx, "route list failed, assuming offline", "error", err)
		return false
	}
	for _, route := range routes {
		if route.Dst == nil || route.Dst.IP.IsUnspecified() {
			return true
		}
	}
	return false
}
