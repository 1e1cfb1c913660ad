package usecase

import (
	"context"
	"io"
	"time"

	"storefront/internal/domain/model"

	"github.com/google/uuid"
)

type IDGenerator interface {
	NewID() string
}

type Clock interface {
	Now() time.Time
}

type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

// 決済ゲートウェイ（Razorpay互換）
type PaymentGateway interface {
	// amountMinor は paise。戻り値はゲートウェイ側の注文ID
	CreateOrder(ctx context.Context, amountMinor int64, currency string, receipt string) (string, error)
	VerifyPaymentSignature(gatewayOrderID, gatewayPaymentID, signature string) (bool, error)
	// クライアントのチェックアウト画面に渡す公開キー
	KeyID() string
}

// 注文イベントの配信先（Kafka / websocket）
type EventPublisher interface {
	Publish(ctx context.Context, event model.OrderEvent) error
}

// チャットの返答を作る
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, prompt string) (string, error)
}

// JWTを発行する約束
type AccessTokenIssuer interface {
	Issue(subject string, role string, now time.Time) (token string, expiresAt time.Time, err error)
}

// 入力パスワードと保存したハッシュを比べる約束
type PasswordVerifier interface {
	Verify(plain string, hashed string) bool
}

// 注文一覧を表計算ファイルにする
type OrderSheetWriter interface {
	WriteOrders(w io.Writer, orders []model.Order, items map[string][]model.OrderItem) error
}
