package commands

import (
	"context"
	"strings"

	domainerrors "papercall/contexts/event-review/proposal-service/domain/errors"
	"papercall/contexts/event-review/proposal-service/ports"
)

func ensureActorCapability(
	ctx context.Context,
	access ports.AccessChecker,
	actorID string,
	capability ports.Capability,
	eventID string,
) error {
	if strings.TrimSpace(actorID) == "" {
		return domainerrors.ErrForbiddenOperation
	}
	allowed, err := access.HasCapability(ctx, strings.TrimSpace(actorID), capability, eventID)
	if err != nil {
		return err
	}
	if !allowed {
		return domainerrors.ErrForbiddenOperation
	}
	return nil
}

func sanitizeIDs(ids []string) []string {
	items := make([]string, 0, len(ids))
	for _, item := range ids {
		if v := strings.TrimSpace(item); v != "" {
			items = append(items, v)
		}
	}
	return items
}
