// Package pipeline 定义了足迹事件的消费处理流程。
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"carbon-chat-go/internal/footprint"
	"carbon-chat-go/internal/model"
	"carbon-chat-go/internal/repository"
	"carbon-chat-go/pkg/log"
	"carbon-chat-go/pkg/tasks"
)

// ErrInvalidEvent 表示事件缺少必要字段，重试也无法成功。
var ErrInvalidEvent = errors.New("invalid footprint event")

// Processor 封装了足迹事件处理的所有依赖和逻辑。
type Processor struct {
	footprintRepo repository.FootprintRepository
}

// NewProcessor 创建一个新的 Processor 实例。
func NewProcessor(footprintRepo repository.FootprintRepository) *Processor {
	return &Processor{footprintRepo: footprintRepo}
}

// Process 将一条足迹事件落库为 FootprintRecord。
// 无效事件只记录日志并返回 nil，避免消费者反复重试。
func (p *Processor) Process(ctx context.Context, event tasks.FootprintEvent) error {
	log.Infof("[Processor] 开始处理足迹事件, EventID: %s, SessionID: %s, Activity: %s", event.EventID, event.SessionID, event.Activity)

	if err := validate(event); err != nil {
		log.Warnf("[Processor] 丢弃无效事件, EventID: %s, Error: %v", event.EventID, err)
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	record := &model.FootprintRecord{
		SessionID: event.SessionID,
		Activity:  event.Activity,
		Quantity:  event.Quantity,
		Unit:      event.Unit,
		KgCO2:     event.KgCO2,
	}
	if !event.CreatedAt.IsZero() {
		record.CreatedAt = event.CreatedAt
	}
	if err := p.footprintRepo.Create(record); err != nil {
		log.Errorf("[Processor] 保存足迹记录失败, EventID: %s, Error: %v", event.EventID, err)
		return fmt.Errorf("保存足迹记录失败: %w", err)
	}

	log.Infof("[Processor] 足迹记录保存成功, RecordID: %d, KgCO2: %s", record.ID, footprint.FormatKg(record.KgCO2))
	return nil
}

func validate(event tasks.FootprintEvent) error {
	if event.SessionID == "" {
		return fmt.Errorf("%w: empty session id", ErrInvalidEvent)
	}
	if _, ok := footprint.ParseActivity(event.Activity); !ok {
		return fmt.Errorf("%w: unknown activity %q", ErrInvalidEvent, event.Activity)
	}
	return nil
}
