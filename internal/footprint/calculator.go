package footprint

import (
	"math"
	"strconv"
	"strings"
)

// Estimate 是一次足迹计算的结果。
type Estimate struct {
	Activity Activity `json:"activity"`
	Quantity float64  `json:"quantity"`
	Unit     Unit     `json:"unit"`
	KgCO2    float64  `json:"kgCO2"`
	Advisory string   `json:"advisory"`
}

// Compute 返回 activityKind 在给定数量下的 kg CO2 排放量。
// 活动类型不区分大小写；未知类型返回 0。非有限或负数的数量按 0 处理。
func Compute(activityKind string, quantity float64) float64 {
	a, ok := ParseActivity(activityKind)
	if !ok {
		return 0
	}
	return a.Factor() * sanitize(quantity)
}

// AdvisoryFor 返回活动的建议文案，未知类型返回 FallbackTip。
func AdvisoryFor(activityKind string) string {
	a, _ := ParseActivity(activityKind)
	return a.Tip()
}

// NewEstimate 计算足迹并附带单位与建议。
func NewEstimate(activityKind string, quantity float64) Estimate {
	a, _ := ParseActivity(activityKind)
	q := sanitize(quantity)
	return Estimate{
		Activity: a,
		Quantity: q,
		Unit:     a.Unit(),
		KgCO2:    Compute(activityKind, q),
		Advisory: a.Tip(),
	}
}

// ParseQuantity 解析文本中的数量，忽略千分位逗号，失败时返回 0。
func ParseQuantity(s string) float64 {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0
	}
	return sanitize(v)
}

// FormatQuantity 以最短十进制形式输出数量，例如 50、12.5。
func FormatQuantity(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatKg 将排放量保留两位小数。
func FormatKg(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
