package gateway

import (
	"context"
	"fmt"

	"github.com/biyahe-app/biyahe/internal/pkg/httpclient"
	"github.com/biyahe-app/biyahe/services/booking"
)

// accountGW talks to the account/quota service over HTTP. That service
// owns user records, the daily cancellation quota and registered discount
// percentages.
type accountGW struct {
	client *httpclient.Client
}

// NewAccountGW creates a new HTTP-backed account gateway
func NewAccountGW(client *httpclient.Client) booking.AccountGW {
	return &accountGW{client: client}
}

type quotaResponse struct {
	Exceeded bool `json:"exceeded"`
}

type discountResponse struct {
	Percent float64 `json:"percent"`
}

func (g *accountGW) CancelQuotaExceeded(ctx context.Context, passengerID string) (bool, error) {
	var resp quotaResponse
	path := fmt.Sprintf("/v1/users/%s/cancel-quota", passengerID)
	if err := g.client.GetJSON(ctx, path, &resp); err != nil {
		return false, fmt.Errorf("failed to check cancellation quota: %w", err)
	}
	return resp.Exceeded, nil
}

func (g *accountGW) RecordCancellation(ctx context.Context, passengerID string) error {
	path := fmt.Sprintf("/v1/users/%s/cancellations", passengerID)
	if err := g.client.PostJSON(ctx, path, nil, nil); err != nil {
		return fmt.Errorf("failed to record cancellation: %w", err)
	}
	return nil
}

func (g *accountGW) DiscountPercent(ctx context.Context, passengerID string) (float64, error) {
	var resp discountResponse
	path := fmt.Sprintf("/v1/users/%s/discount", passengerID)
	if err := g.client.GetJSON(ctx, path, &resp); err != nil {
		return 0, fmt.Errorf("failed to get discount percent: %w", err)
	}
	return resp.Percent, nil
}
