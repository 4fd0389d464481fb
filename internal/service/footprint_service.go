package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"carbon-chat-go/internal/footprint"
	"carbon-chat-go/internal/model"
	"carbon-chat-go/internal/repository"
)

var (
	ErrUnknownActivity = errors.New("unknown activity")
	ErrInvalidQuantity = errors.New("quantity must be a non-negative number")
)

// ActivityInfo 描述因子表中的一项活动。
type ActivityInfo struct {
	Activity footprint.Activity `json:"activity"`
	Unit     footprint.Unit     `json:"unit"`
	Factor   float64            `json:"factor"`
	Tip      string             `json:"tip"`
}

// FootprintSummary 汇总一个会话中保存的足迹记录。
type FootprintSummary struct {
	Records     []model.FootprintRecord     `json:"records"`
	TotalKgCO2  float64                     `json:"totalKgCO2"`
	Equivalency footprint.EquivalencyOutput `json:"equivalency"`
}

// FootprintService 提供带参数校验的计算器入口以及会话记录查询。
type FootprintService interface {
	Estimate(activity string, quantity float64) (*footprint.Estimate, error)
	Activities() []ActivityInfo
	Records(ctx context.Context, sessionID string) (*FootprintSummary, error)
}

type footprintService struct {
	footprintRepo repository.FootprintRepository
}

// NewFootprintService 创建一个新的 FootprintService。
func NewFootprintService(footprintRepo repository.FootprintRepository) FootprintService {
	return &footprintService{footprintRepo: footprintRepo}
}

// Estimate 与 footprint.NewEstimate 不同，未知活动和非法数量会返回错误而不是 0。
func (s *footprintService) Estimate(activity string, quantity float64) (*footprint.Estimate, error) {
	a, ok := footprint.ParseActivity(activity)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownActivity, activity)
	}
	if quantity < 0 || math.IsNaN(quantity) || math.IsInf(quantity, 0) {
		return nil, ErrInvalidQuantity
	}
	e := footprint.NewEstimate(string(a), quantity)
	return &e, nil
}

// Activities 按因子表顺序列出全部活动。
func (s *footprintService) Activities() []ActivityInfo {
	all := footprint.Activities()
	out := make([]ActivityInfo, 0, len(all))
	for _, a := range all {
		out = append(out, ActivityInfo{Activity: a, Unit: a.Unit(), Factor: a.Factor(), Tip: a.Tip()})
	}
	return out
}

// Records 返回会话的足迹记录、总排放量及其等价换算。
func (s *footprintService) Records(ctx context.Context, sessionID string) (*FootprintSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	records, err := s.footprintRepo.FindBySessionID(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load footprint records: %w", err)
	}
	var total float64
	for _, r := range records {
		total += r.KgCO2
	}
	eq, err := footprint.Equivalencies(total)
	if err != nil {
		return nil, fmt.Errorf("failed to compute equivalencies: %w", err)
	}
	if records == nil {
		records = []model.FootprintRecord{}
	}
	return &FootprintSummary{Records: records, TotalKgCO2: total, Equivalency: eq}, nil
}
