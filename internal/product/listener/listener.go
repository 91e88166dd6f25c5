package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/fekuna/superfume-sync/internal/product"
	"github.com/fekuna/superfume-sync/pkg/logger"
)

const (
	EventPerfumeUpserted = "PerfumeUpserted"
	EventPerfumeDeleted  = "PerfumeDeleted"
	EventCatalogChanged  = "CatalogChanged"
)

// MessageReader is satisfied by broker.KafkaConsumer.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type CatalogListener struct {
	reader     MessageReader
	uc         product.UseCase
	logger     logger.ZapLogger
	retryDelay time.Duration
}

func NewCatalogListener(reader MessageReader, uc product.UseCase, log logger.ZapLogger) *CatalogListener {
	return &CatalogListener{
		reader:     reader,
		uc:         uc,
		logger:     log,
		retryDelay: time.Second,
	}
}

// Start consumes until ctx is done.
func (l *CatalogListener) Start(ctx context.Context) {
	l.logger.Info("Starting catalog event listener")
	for {
		msg, err := l.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				l.logger.Info("Stopping catalog event listener")
				return
			}
			l.logger.Error("Failed to read kafka message", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(l.retryDelay):
			}
			continue
		}
		l.processMessage(ctx, msg.Value)
	}
}

type CatalogEvent struct {
	EventID   string         `json:"event_id"`
	EventType string         `json:"event_type"`
	Payload   CatalogPayload `json:"payload"`
	Timestamp time.Time      `json:"timestamp"`
}

type CatalogPayload struct {
	ID int64 `json:"id"`
}

func (l *CatalogListener) processMessage(ctx context.Context, value []byte) {
	var event CatalogEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	var err error
	switch event.EventType {
	case EventPerfumeUpserted:
		if event.Payload.ID == 0 {
			err = l.uc.Refresh(ctx)
		} else {
			err = l.uc.RefreshProduct(ctx, event.Payload.ID)
		}
	case EventPerfumeDeleted, EventCatalogChanged:
		// Sync never removes rows, a full pull is enough.
		err = l.uc.Refresh(ctx)
	default:
		return
	}

	if err != nil {
		l.logger.Warn("Failed to apply catalog event",
			zap.String("event_id", event.EventID),
			zap.String("event_type", event.EventType),
			zap.Int64("perfume_id", event.Payload.ID),
			zap.Error(err),
		)
		return
	}
	l.logger.Debug("Applied catalog event",
		zap.String("event_id", event.EventID),
		zap.String("event_type", event.EventType),
	)
}
