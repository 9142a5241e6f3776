// Package identity resolves staker display names from the out-of-scope
// profile service. Resolution is best effort: stake reads fall back to
// placeholder text and never block on it.
package identity

import "context"

const (
	// FallbackLoading is shown for an app-user staker whose profile could
	// not be resolved in time.
	FallbackLoading = "Loading..."
	// FallbackManual is shown for an off-app staker with no recorded name.
	FallbackManual = "Manual Staker"
)

type Resolver interface {
	DisplayName(ctx context.Context, userID string) (string, error)
}

// StaticResolver serves names from a fixed map, for tests and local dev.
type StaticResolver map[string]string

func (r StaticResolver) DisplayName(_ context.Context, userID string) (string, error) {
	if name, ok := r[userID]; ok {
		return name, nil
	}
	return "", ErrUnresolved
}
