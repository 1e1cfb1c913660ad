package usecase

import (
	"context"
	"net/http"
	"strings"

	"storefront/internal/logging"
)

const farmSystemPrompt = `You are a helpful AI assistant for Laxmi Farms, a premium country chicken farm in Nalgonda, Telangana, India.

PRODUCTS:
1. Country Chicken (Natu Kodi) - ₹450/kg
2. Kadaknath Chicken - ₹850/kg
3. Broiler Chicken - ₹280/kg
4. Giriraja Chicken - ₹380/kg
5. Desi Eggs - ₹120 for 12, ₹280 for 30

DELIVERY: Same-day in Nalgonda, 1-2 days elsewhere. Free above ₹1000.
CONTACT: +91 9885167159 | laxmifarms001@gmail.com
ADDRESS: Pedda Banda, Nalgonda, Telangana - 508001

Keep responses concise and helpful.`

const (
	ChatReplyUnavailable   = "AI service unavailable. Please call +91 9885167159."
	ChatReplyUnavailableTe = "AI సేవ అందుబాటులో లేదు. +91 9885167159 కు కాల్ చేయండి."
	ChatReplyError         = "Sorry, I encountered an error. Please call +91 9885167159 for help."

	chatMaxMessageLen = 2000
)

type ChatUsecase struct {
	gen ReplyGenerator // nil ならAI無し
}

func NewChatUsecase(gen ReplyGenerator) *ChatUsecase {
	return &ChatUsecase{gen: gen}
}

type ChatInput struct {
	Message  string
	Language string
}

type ChatOutput struct {
	Reply string `json:"reply"`
}

// 生成に失敗しても固定文を返す（エラーにしない）
func (u *ChatUsecase) Reply(ctx context.Context, in ChatInput) (ChatOutput, error) {
	msg := strings.TrimSpace(in.Message)
	if msg == "" {
		return ChatOutput{}, NewHTTPError(http.StatusBadRequest, "message is required")
	}
	if len(msg) > chatMaxMessageLen {
		return ChatOutput{}, NewHTTPError(http.StatusBadRequest, "message too long")
	}
	telugu := strings.EqualFold(strings.TrimSpace(in.Language), "te")

	if u.gen == nil {
		if telugu {
			return ChatOutput{Reply: ChatReplyUnavailableTe}, nil
		}
		return ChatOutput{Reply: ChatReplyUnavailable}, nil
	}

	reply, err := u.gen.GenerateReply(ctx, BuildChatPrompt(msg, telugu))
	if err != nil || strings.TrimSpace(reply) == "" {
		logging.FromContext(ctx).Error("chat_generate_failed", "error", err)
		return ChatOutput{Reply: ChatReplyError}, nil
	}
	return ChatOutput{Reply: reply}, nil
}

func BuildChatPrompt(message string, telugu bool) string {
	var b strings.Builder
	b.WriteString(farmSystemPrompt)
	b.WriteString("\n\n")
	if telugu {
		b.WriteString("Respond in Telugu.")
	}
	b.WriteString("\n\nCustomer: ")
	b.WriteString(message)
	b.WriteString("\n\nProvide a helpful, concise response:")
	return b.String()
}
