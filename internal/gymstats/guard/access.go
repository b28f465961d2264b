package guard

import (
	"context"
	"fmt"

	"github.com/2beens/befit/internal/auth"
)

func RequireAuthenticated(p auth.Principal) error {
	if !p.IsAuthenticated() {
		return ErrUnauthenticated
	}
	return nil
}

func RequireRole(p auth.Principal, role string) error {
	if err := RequireAuthenticated(p); err != nil {
		return err
	}
	if !p.HasRole(role) {
		return fmt.Errorf("%w: role %s required", ErrForbidden, role)
	}
	return nil
}

// RequireOwner passes only when the principal is the owner recorded on the row.
func RequireOwner(p auth.Principal, ownerID string) error {
	if err := RequireAuthenticated(p); err != nil {
		return err
	}
	if ownerID != p.UserID {
		return ErrForbidden
	}
	return nil
}

// ResolveConflict decides the outcome of a write that lost an optimistic concurrency race.
// When the row is no longer visible to the caller the write maps to not-found,
// otherwise the conflict is returned as is and the request fails.
func ResolveConflict(ctx context.Context, stillVisible func(ctx context.Context) (bool, error), cause error) error {
	visible, err := stillVisible(ctx)
	if err != nil {
		return fmt.Errorf("re-check after conflict: %w", err)
	}
	if !visible {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %w", ErrConflict, cause)
}
