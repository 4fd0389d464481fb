// Package interpreter 将用户的自由文本解析为足迹计算请求，并生成自然语言回复。
package interpreter

import (
	"fmt"
	"regexp"
	"strings"

	"carbon-chat-go/internal/footprint"
	"carbon-chat-go/pkg/log"
)

// Intent 标识命中的规则。
type Intent string

const (
	IntentCombineTrips  Intent = "combine_trips"
	IntentOffsetProgram Intent = "offset_program"
	IntentGreeting      Intent = "greeting"
	IntentTrips         Intent = "trips"
	IntentElectricity   Intent = "electricity"
	IntentFood          Intent = "food"
	IntentFallback      Intent = "fallback"
	IntentFault         Intent = "fault"
)

// Reply 是一次解释的结果。
type Reply struct {
	Text        string               `json:"text"`
	Intent      Intent               `json:"intent"`
	Estimates   []footprint.Estimate `json:"estimates,omitempty"`
	Suggestions []string             `json:"suggestions,omitempty"`
}

// TripMatch 是从输入中提取出的单次出行。
type TripMatch struct {
	Activity footprint.Activity
	Quantity float64
}

type rule struct {
	name  string
	apply func(text string) (Reply, bool)
}

// Interpreter 按优先级依次尝试规则，第一条命中的规则给出回复。
type Interpreter struct {
	rules []rule

	questionCue  *regexp.Regexp
	combineTrips *regexp.Regexp
	offset       *regexp.Regexp
	howAreYou    *regexp.Regexp
	whoAreYou    *regexp.Regexp
	greeting     *regexp.Regexp
	trip         *regexp.Regexp
	travelKind   *regexp.Regexp
	distance     *regexp.Regexp
	electricity  *regexp.Regexp
	kwh          *regexp.Regexp
	meat         *regexp.Regexp
	vegetables   *regexp.Regexp
	kg           *regexp.Regexp
}

// number 匹配数量，允许千分位逗号，例如 12,500 或 1,000.5。
const number = `(\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?)`

// standalone 要求数字前不是字母、数字、小数点或逗号，避免截取 1e3、1,0000 这类记号的后半段。
const standalone = `(?:^|[^\w.,])`

// kmUnit 排除 km/h 这样的速度单位。
const kmUnit = `\s*(?:kms?|kilomet(?:er|re)s?)(?:$|[^\w/])`

// New 构建解释器。出行词表由 footprint.TravelActivities 生成，
// 因此正则能产生的每个活动标识都在因子表与建议表中。
func New() *Interpreter {
	kinds := make([]string, 0)
	for _, a := range footprint.TravelActivities() {
		kinds = append(kinds, regexp.QuoteMeta(string(a)))
	}
	kind := `\b(` + strings.Join(kinds, "|") + `)s?\b`

	in := &Interpreter{
		questionCue:  regexp.MustCompile(`\b(what|explain|mean|means|meaning|how|why|tell me)\b`),
		combineTrips: regexp.MustCompile(`\bcombin(?:e|ing)\s+(?:my\s+|your\s+)?trips?\b`),
		offset:       regexp.MustCompile(`\b(?:carbon\s+offsets?(?:\s+programs?)?|offset\s+programs?)\b`),
		howAreYou:    regexp.MustCompile(`\bhow\s+are\s+(?:you|u)\b`),
		whoAreYou:    regexp.MustCompile(`\b(?:who|what)\s+are\s+(?:you|u)\b|\byour\s+name\b`),
		greeting:     regexp.MustCompile(`^(?:hi|hello|hey|hiya|greetings|good\s+(?:morning|afternoon|evening))(?:\s+(?:there|bot))?[\s!.,?]*$`),
		trip: regexp.MustCompile(
			kind + `\s*(?:[:\-]|for|of)?\s*` + number + `\s*kms?\b` +
				`|\b` + number + `\s*kms?\s+(?:(?:by|of|in|on)\s+)?(?:(?:a|an|the|my)\s+)?` + kind),
		travelKind:  regexp.MustCompile(kind),
		distance:    regexp.MustCompile(standalone + number + kmUnit),
		electricity: regexp.MustCompile(`\belectricity\b`),
		kwh:         regexp.MustCompile(standalone + number + `\s*kwh\b`),
		meat:        regexp.MustCompile(`\bmeat\b`),
		vegetables:  regexp.MustCompile(`\b(?:vegetables?|veggies)\b`),
		kg:          regexp.MustCompile(standalone + number + `\s*kgs?\b`),
	}
	in.rules = []rule{
		{"combine_trips", in.explainCombineTrips},
		{"offset_program", in.explainOffset},
		{"greeting", in.greet},
		{"multi_trip", in.multiTrip},
		{"single_trip", in.singleTrip},
		{"electricity", in.electricityUsage},
		{"meat", in.food(footprint.Meat, in.meat)},
		{"vegetables", in.food(footprint.Vegetables, in.vegetables)},
	}
	return in
}

var defaultInterpreter = New()

// Interpret 使用默认解释器处理一条输入。
func Interpret(rawText string) Reply {
	return defaultInterpreter.Interpret(rawText)
}

// Interpret 对输入做小写归一化后按优先级匹配规则，均未命中时返回兜底回复。
// 解释过程中的 panic 会被捕获并转换为固定的致歉回复。
func (in *Interpreter) Interpret(rawText string) (reply Reply) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("[Interpreter] 解释消息时发生异常: %v", r)
			reply = Reply{Text: ApologyMessage, Intent: IntentFault}
		}
	}()

	text := strings.ToLower(strings.TrimSpace(rawText))
	for _, r := range in.rules {
		if out, ok := r.apply(text); ok {
			return out
		}
	}
	return Reply{Text: FallbackMessage, Intent: IntentFallback, Suggestions: Suggestions()}
}

// ExtractTrips 按从左到右的顺序返回输入中全部不重叠的出行匹配。
// 紧跟 "/" 的距离（如 km/h）不算出行。
func (in *Interpreter) ExtractTrips(text string) []TripMatch {
	text = strings.ToLower(text)
	var trips []TripMatch
	for _, loc := range in.trip.FindAllStringSubmatchIndex(text, -1) {
		kind, qty := submatch(text, loc, 1), submatch(text, loc, 2)
		if kind == "" {
			qty, kind = submatch(text, loc, 3), submatch(text, loc, 4)
		} else if end := loc[1]; end < len(text) && text[end] == '/' {
			continue
		}
		trips = append(trips, TripMatch{
			Activity: footprint.Activity(kind),
			Quantity: footprint.ParseQuantity(qty),
		})
	}
	return trips
}

func submatch(text string, loc []int, i int) string {
	if loc[2*i] < 0 {
		return ""
	}
	return text[loc[2*i]:loc[2*i+1]]
}

func (in *Interpreter) explainCombineTrips(text string) (Reply, bool) {
	if in.questionCue.MatchString(text) && in.combineTrips.MatchString(text) {
		return Reply{Text: CombineTripsExplanation, Intent: IntentCombineTrips}, true
	}
	return Reply{}, false
}

func (in *Interpreter) explainOffset(text string) (Reply, bool) {
	if in.questionCue.MatchString(text) && in.offset.MatchString(text) {
		return Reply{Text: OffsetProgramExplanation, Intent: IntentOffsetProgram}, true
	}
	return Reply{}, false
}

func (in *Interpreter) greet(text string) (Reply, bool) {
	switch {
	case in.howAreYou.MatchString(text):
		return Reply{Text: HowAreYouReply, Intent: IntentGreeting}, true
	case in.whoAreYou.MatchString(text):
		return Reply{Text: IdentityReply, Intent: IntentGreeting}, true
	case in.greeting.MatchString(text):
		return Reply{Text: GreetingReply, Intent: IntentGreeting}, true
	}
	return Reply{}, false
}

func (in *Interpreter) multiTrip(text string) (Reply, bool) {
	trips := in.ExtractTrips(text)
	if len(trips) == 0 {
		return Reply{}, false
	}
	estimates := make([]footprint.Estimate, 0, len(trips))
	sentences := make([]string, 0, len(trips))
	for _, t := range trips {
		e := footprint.NewEstimate(string(t.Activity), t.Quantity)
		estimates = append(estimates, e)
		sentences = append(sentences, tripSentence(e))
	}
	return Reply{
		Text:      strings.Join(sentences, "\n\n"),
		Intent:    IntentTrips,
		Estimates: estimates,
	}, true
}

func (in *Interpreter) singleTrip(text string) (Reply, bool) {
	kind := in.travelKind.FindStringSubmatch(text)
	dist := in.distance.FindStringSubmatch(text)
	if kind == nil || dist == nil {
		return Reply{}, false
	}
	e := footprint.NewEstimate(kind[1], footprint.ParseQuantity(dist[1]))
	return Reply{Text: tripSentence(e), Intent: IntentTrips, Estimates: []footprint.Estimate{e}}, true
}

func (in *Interpreter) electricityUsage(text string) (Reply, bool) {
	if !in.electricity.MatchString(text) {
		return Reply{}, false
	}
	m := in.kwh.FindStringSubmatch(text)
	if m == nil {
		return Reply{}, false
	}
	e := footprint.NewEstimate(string(footprint.Electricity), footprint.ParseQuantity(m[1]))
	text = fmt.Sprintf("Your %skWh electricity produces about %skg of CO2. %s",
		footprint.FormatQuantity(e.Quantity), footprint.FormatKg(e.KgCO2), e.Advisory)
	return Reply{Text: text, Intent: IntentElectricity, Estimates: []footprint.Estimate{e}}, true
}

func (in *Interpreter) food(a footprint.Activity, keyword *regexp.Regexp) func(string) (Reply, bool) {
	return func(text string) (Reply, bool) {
		if !keyword.MatchString(text) {
			return Reply{}, false
		}
		m := in.kg.FindStringSubmatch(text)
		if m == nil {
			return Reply{}, false
		}
		e := footprint.NewEstimate(string(a), footprint.ParseQuantity(m[1]))
		out := fmt.Sprintf("Your %skg of %s produces about %skg of CO2. %s",
			footprint.FormatQuantity(e.Quantity), a, footprint.FormatKg(e.KgCO2), e.Advisory)
		return Reply{Text: out, Intent: IntentFood, Estimates: []footprint.Estimate{e}}, true
	}
}

func tripSentence(e footprint.Estimate) string {
	qty := footprint.FormatQuantity(e.Quantity)
	switch e.Activity {
	case footprint.Bike:
		// 自行车因子为 0，直接输出未取整的数值
		return fmt.Sprintf("Your %skm bike journey produces %skg of CO2 - a zero-emission way to travel! %s",
			qty, footprint.FormatQuantity(e.KgCO2), e.Advisory)
	case footprint.Flight:
		return fmt.Sprintf("Your %skm flight produces approximately %skg of CO2. %s",
			qty, footprint.FormatKg(e.KgCO2), e.Advisory)
	default:
		return fmt.Sprintf("Your %skm %s trip produces approximately %skg of CO2. %s",
			qty, e.Activity, footprint.FormatKg(e.KgCO2), e.Advisory)
	}
}
