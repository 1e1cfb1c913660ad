package gateway

import (
	"context"

	"storefront/internal/usecase"
)

// キー未設定のとき。gateway 払いは 500 になる
type DisabledGateway struct{}

func (DisabledGateway) KeyID() string { return "" }

func (DisabledGateway) CreateOrder(context.Context, int64, string, string) (string, error) {
	return "", usecase.ErrGatewayNotConfigured
}

func (DisabledGateway) VerifyPaymentSignature(string, string, string) (bool, error) {
	return false, usecase.ErrGatewayNotConfigured
}
