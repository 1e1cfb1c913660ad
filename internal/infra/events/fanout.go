package events

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
	"storefront/internal/usecase"
)

// 複数の配信先に順に送る。1つ失敗しても残りには送る
type Fanout struct {
	targets []usecase.EventPublisher
}

func NewFanout(targets ...usecase.EventPublisher) *Fanout {
	kept := make([]usecase.EventPublisher, 0, len(targets))
	for _, t := range targets {
		if t != nil {
			kept = append(kept, t)
		}
	}
	return &Fanout{targets: kept}
}

func (f *Fanout) Publish(ctx context.Context, ev model.OrderEvent) error {
	var errs []error
	for _, t := range f.targets {
		if err := t.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Kafka 未設定のとき
type Noop struct{}

func (Noop) Publish(context.Context, model.OrderEvent) error { return nil }
