package messaging

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/ferdian3456/rosterbridge/internal/model"
	"github.com/ferdian3456/rosterbridge/internal/usecase"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const handleTimeout = 30 * time.Second

type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// MemberUpdateConsumer feeds platform member-update events into the debounced reconciler.
type MemberUpdateConsumer struct {
	Reader              MessageReader
	MemberUpdateUsecase *usecase.MemberUpdateUsecase
	Log                 *zap.Logger
	RetryDelay          time.Duration
}

func NewMemberUpdateReader(brokers []string, topic string, groupId string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupId,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  time.Second,
	})
}

func NewMemberUpdateConsumer(reader MessageReader, memberUpdateUsecase *usecase.MemberUpdateUsecase, zap *zap.Logger) *MemberUpdateConsumer {
	return &MemberUpdateConsumer{
		Reader:              reader,
		MemberUpdateUsecase: memberUpdateUsecase,
		Log:                 zap,
		RetryDelay:          time.Second,
	}
}

// Start consumes until ctx is cancelled. Every fetched message is committed after one handling
// attempt. Reconciliation fails soft, and the next update for the user converges it.
func (consumer *MemberUpdateConsumer) Start(ctx context.Context) {
	consumer.Log.Info("member update consumer started")

	for {
		if ctx.Err() != nil {
			return
		}

		message, err := consumer.Reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			consumer.Log.Warn("failed to fetch member update", zap.Error(err))
			consumer.sleep(ctx)
			continue
		}

		consumer.handle(ctx, message)
		if ctx.Err() != nil {
			return
		}

		err = consumer.Reader.CommitMessages(ctx, message)
		if err != nil && ctx.Err() == nil {
			consumer.Log.Error("failed to commit member update offset", zap.Int64("offset", message.Offset), zap.Error(err))
		}
	}
}

func (consumer *MemberUpdateConsumer) handle(ctx context.Context, message kafka.Message) {
	var event model.MemberUpdateEvent
	err := sonic.Unmarshal(message.Value, &event)
	if err != nil {
		consumer.Log.Warn("dropping malformed member update", zap.Int64("offset", message.Offset), zap.Error(err))
		return
	}

	if event.UserId == "" {
		event.UserId = string(message.Key)
	}

	handleCtx, cancel := context.WithTimeout(ctx, handleTimeout)
	defer cancel()

	result, err := consumer.MemberUpdateUsecase.HandleMemberUpdate(handleCtx, event.UserId)
	if err != nil {
		consumer.Log.Warn("dropping invalid member update", zap.Int64("offset", message.Offset), zap.Error(err))
		return
	}

	if result.Skipped {
		consumer.Log.Debug("member update debounced", zap.String("user_id", event.UserId))
		return
	}

	if !result.Rank.Success || !result.Team.Success {
		consumer.Log.Warn("member update reconciled partially",
			zap.String("user_id", event.UserId),
			zap.String("rank", result.Rank.Message),
			zap.String("team", result.Team.Message),
		)
	}
}

func (consumer *MemberUpdateConsumer) sleep(ctx context.Context) {
	timer := time.NewTimer(consumer.RetryDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func (consumer *MemberUpdateConsumer) Close() error {
	return consumer.Reader.Close()
}
