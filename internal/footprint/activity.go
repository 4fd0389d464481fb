// Package footprint 提供基于静态排放因子表的碳足迹计算。
//
// 所有活动类型构成一个封闭枚举，排放因子、计量单位与建议文案都通过
// 对该枚举的穷举 switch 给出，保证两张表对同一组标识完全覆盖。
package footprint

import "strings"

// Activity 表示一种用户活动类别（出行方式、用电、饮食）。
type Activity string

const (
	Car         Activity = "car"
	Flight      Activity = "flight"
	Electricity Activity = "electricity"
	Meat        Activity = "meat"
	Vegetables  Activity = "vegetables"
	Bike        Activity = "bike"
	Bus         Activity = "bus"
	Train       Activity = "train"
	Motorcycle  Activity = "motorcycle"
	Truck       Activity = "truck"
	Scooter     Activity = "scooter"
	Ferry       Activity = "ferry"
	Tram        Activity = "tram"
	Subway      Activity = "subway"
)

// Unit 是活动数量的计量单位。
type Unit string

const (
	Kilometer    Unit = "km"
	KilowattHour Unit = "kWh"
	Kilogram     Unit = "kg"
)

// FallbackTip 是未知活动类型对应的通用建议。
const FallbackTip = "Every small action counts towards reducing your carbon footprint!"

var allActivities = []Activity{
	Car, Flight, Electricity, Meat, Vegetables, Bike, Bus,
	Train, Motorcycle, Truck, Scooter, Ferry, Tram, Subway,
}

// Activities 按表顺序返回全部活动类型。
func Activities() []Activity {
	out := make([]Activity, len(allActivities))
	copy(out, allActivities)
	return out
}

// TravelActivities 返回以公里计量的出行类活动，解释器的出行词表由它生成。
func TravelActivities() []Activity {
	out := make([]Activity, 0, len(allActivities))
	for _, a := range allActivities {
		if a.Unit() == Kilometer {
			out = append(out, a)
		}
	}
	return out
}

// ParseActivity 忽略大小写与首尾空白解析活动类型。
func ParseActivity(s string) (Activity, bool) {
	a := Activity(strings.ToLower(strings.TrimSpace(s)))
	return a, a.Valid()
}

// Valid 报告 a 是否属于已知活动枚举。
func (a Activity) Valid() bool {
	switch a {
	case Car, Flight, Electricity, Meat, Vegetables, Bike, Bus,
		Train, Motorcycle, Truck, Scooter, Ferry, Tram, Subway:
		return true
	default:
		return false
	}
}

// Factor 返回每单位活动的 kg CO2 排放因子，未知类型返回 0。
func (a Activity) Factor() float64 {
	switch a {
	case Car:
		return 0.2
	case Flight:
		return 0.2
	case Electricity:
		return 0.5
	case Meat:
		return 6.0
	case Vegetables:
		return 0.4
	case Bike:
		return 0
	case Bus:
		return 0.05
	case Train:
		return 0.04
	case Motorcycle:
		return 0.09
	case Truck:
		return 0.25
	case Scooter:
		return 0.02 // 电动滑板车
	case Ferry:
		return 0.18
	case Tram:
		return 0.03
	case Subway:
		return 0.03
	default:
		return 0
	}
}

// Unit 返回活动数量的计量单位。
func (a Activity) Unit() Unit {
	switch a {
	case Electricity:
		return KilowattHour
	case Meat, Vegetables:
		return Kilogram
	default:
		return Kilometer
	}
}

// Tip 返回该活动的减排建议，未知类型返回 FallbackTip。
func (a Activity) Tip() string {
	switch a {
	case Car:
		return "Consider carpooling or using public transportation to reduce emissions."
	case Flight:
		return "Try to combine trips and consider carbon offset programs for necessary flights."
	case Electricity:
		return "Switch to LED bulbs and energy-efficient appliances."
	case Meat:
		return "Consider incorporating more plant-based meals into your diet."
	case Vegetables:
		return "Buy local and seasonal produce to reduce transportation emissions."
	case Bike:
		return "Great choice! Cycling is a zero-emission mode of transport that improves your health."
	case Bus:
		return "Public transportation like buses is more sustainable than individual car travel."
	case Train:
		return "Trains are a low-emission way to cover long distances, especially electric trains."
	case Motorcycle:
		return "Ride efficiently and keep your motorcycle well-maintained to lower emissions."
	case Truck:
		return "Consider if truck travel can be reduced or consolidated to improve efficiency."
	case Scooter:
		return "Electric scooters have a low carbon footprint for short trips."
	case Ferry:
		return "Try using ferries only when necessary or look for routes using more efficient vessels."
	case Tram:
		return "Using trams helps reduce city air pollution. They run on electricity and are efficient."
	case Subway:
		return "Subways are among the cleanest forms of public transport. Choose them for regular routes."
	default:
		return FallbackTip
	}
}
