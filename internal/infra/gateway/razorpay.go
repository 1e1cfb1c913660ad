package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"
)

// Razorpay の注文作成と署名検証
type RazorpayGateway struct {
	client *razorpay.Client
	keyID  string
	secret string
}

func NewRazorpayGateway(keyID, secret string) (*RazorpayGateway, error) {
	if strings.TrimSpace(keyID) == "" || strings.TrimSpace(secret) == "" {
		return nil, errors.New("razorpay key id and secret are required")
	}
	return &RazorpayGateway{
		client: razorpay.NewClient(keyID, secret),
		keyID:  keyID,
		secret: secret,
	}, nil
}

func (g *RazorpayGateway) KeyID() string {
	return g.keyID
}

// amountMinor は paise。receipt に注文番号を入れる
func (g *RazorpayGateway) CreateOrder(ctx context.Context, amountMinor int64, currency string, receipt string) (string, error) {
	if amountMinor <= 0 {
		return "", fmt.Errorf("invalid amount: %d", amountMinor)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	body, err := g.client.Order.Create(map[string]interface{}{
		"amount":   amountMinor,
		"currency": currency,
		"receipt":  receipt,
	}, nil)
	if err != nil {
		return "", fmt.Errorf("razorpay create order: %w", err)
	}

	id, ok := body["id"].(string)
	if !ok || id == "" {
		return "", errors.New("razorpay create order: response has no id")
	}
	return id, nil
}

func (g *RazorpayGateway) VerifyPaymentSignature(orderID, paymentID, signature string) (bool, error) {
	return VerifySignature(g.secret, orderID, paymentID, signature), nil
}

// HMAC-SHA256(order_id|payment_id, secret) の16進表記と比べる
func VerifySignature(secret, orderID, paymentID, signature string) bool {
	if orderID == "" || paymentID == "" || signature == "" {
		return false
	}
	return utils.VerifyPaymentSignature(map[string]interface{}{
		"razorpay_order_id":   orderID,
		"razorpay_payment_id": paymentID,
	}, strings.ToLower(signature), secret)
}
