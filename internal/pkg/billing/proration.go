package billing

import (
	"context"
	"time"
)

// PreviewProration simulates switching the subscription's single item to the
// new price at the current instant, without committing anything. Safe to call
// repeatedly, e.g. while a user moves a plan-change selector.
func (s *Service) PreviewProration(ctx context.Context, subscriptionID, newPriceID string) (*ProrationPreview, error) {
	if newPriceID == "" {
		return nil, ErrNotSynced
	}
	cutover := time.Now()
	return s.gateway.PreviewPriceChange(ctx, subscriptionID, newPriceID, cutover)
}
