package footprint

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// EPA 温室气体等效换算因子（2024 版）。等效值 = kg CO2 / 因子。
const (
	// MilesDrivenFactor 普通乘用车每英里的 kg CO2。
	MilesDrivenFactor = 0.192
	// SmartphoneChargeFactor 每次智能手机完整充电的 kg CO2。
	SmartphoneChargeFactor = 0.00822
	// MinEquivalencyKg 低于该值时不输出等效换算。
	MinEquivalencyKg = 1.0
)

type constError string

func (e constError) Error() string { return string(e) }

var (
	// ErrNegativeValue 排放量不能为负。
	ErrNegativeValue = constError("negative carbon value")
	// ErrCalculationOverflow 输入或结果不是有限数。
	ErrCalculationOverflow = constError("calculation overflow")
)

var printer = message.NewPrinter(language.English)

// Equivalency 是单项等效换算结果。
type Equivalency struct {
	Label          string  `json:"label"`
	Value          float64 `json:"value"`
	FormattedValue string  `json:"formattedValue"`
}

// EquivalencyOutput 汇总一次换算的全部结果。
type EquivalencyOutput struct {
	InputKg     float64       `json:"inputKg"`
	Results     []Equivalency `json:"results"`
	DisplayText string        `json:"displayText"`
	IsEmpty     bool          `json:"isEmpty"`
}

// Equivalencies 将 kg CO2 换算为行驶英里数与手机充电次数。
// 低于 MinEquivalencyKg 时返回空结果且不报错。
func Equivalencies(kg float64) (EquivalencyOutput, error) {
	if math.IsNaN(kg) || math.IsInf(kg, 0) {
		return EquivalencyOutput{IsEmpty: true}, ErrCalculationOverflow
	}
	if kg < 0 {
		return EquivalencyOutput{IsEmpty: true}, ErrNegativeValue
	}
	if kg < MinEquivalencyKg {
		return EquivalencyOutput{InputKg: kg, IsEmpty: true}, nil
	}

	miles := kg / MilesDrivenFactor
	phones := kg / SmartphoneChargeFactor
	if math.IsInf(miles, 0) || math.IsInf(phones, 0) {
		return EquivalencyOutput{IsEmpty: true}, ErrCalculationOverflow
	}

	milesText := formatCount(miles)
	phonesText := formatCount(phones)
	return EquivalencyOutput{
		InputKg: kg,
		Results: []Equivalency{
			{Label: "miles driven", Value: miles, FormattedValue: milesText},
			{Label: "smartphones charged", Value: phones, FormattedValue: phonesText},
		},
		DisplayText: fmt.Sprintf("Equivalent to driving ~%s miles or charging ~%s smartphones", milesText, phonesText),
	}, nil
}

func formatCount(v float64) string {
	return printer.Sprintf("%d", int64(math.Round(v)))
}
