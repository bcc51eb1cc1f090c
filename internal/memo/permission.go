package memo

import (
	"context"
	"log/slog"
)

// PermissionRequester asks the platform for microphone access. The
// platform caches its decision.
type PermissionRequester interface {
	RequestPermission(ctx context.Context) (bool, error)
}

// PermissionGate decides whether a recording may start.
type PermissionGate struct {
	platform PermissionRequester
}

func NewPermissionGate(platform PermissionRequester) *PermissionGate {
	return &PermissionGate{platform: platform}
}

// Request returns whether microphone access is granted. There is no
// retry; callers ask again on the next start.
func (g *PermissionGate) Request(ctx context.Context) (bool, error) {
	granted, err := g.platform.RequestPermission(ctx)
	if err != nil {
		return false, err
	}

	if !granted {
		slog.Info("microphone permission not granted")
	}

	return granted, nil
}
