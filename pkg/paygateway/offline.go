package paygateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// OfflineClient issues gateway orders locally. It is used in development
// and tests where the provider is not reachable; signatures are computed
// with the same secret, so a test can act as the provider.
type OfflineClient struct {
	keyID  string
	signer Signer
}

// NewOfflineClient creates an OfflineClient.
func NewOfflineClient(keyID, secret string) *OfflineClient {
	return &OfflineClient{keyID: keyID, signer: NewSigner(secret)}
}

func (c *OfflineClient) KeyID() string { return c.keyID }

func (c *OfflineClient) Sign(gatewayOrderID, paymentID string) string {
	return c.signer.Sign(gatewayOrderID, paymentID)
}

func (c *OfflineClient) Verify(gatewayOrderID, paymentID, signature string) bool {
	return c.signer.Verify(gatewayOrderID, paymentID, signature)
}

func (c *OfflineClient) CreateOrder(_ context.Context, req OrderRequest) (*Order, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %d", req.Amount)
	}
	return &Order{
		ID:       "order_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:14],
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Status:   "created",
	}, nil
}
