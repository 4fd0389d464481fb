package interpreter

// 固定回复文案。
const (
	CombineTripsExplanation = "Combine trips: Instead of taking multiple separate flights, you plan your travel so you can visit multiple destinations or complete multiple tasks in one trip. This reduces the number of flights taken overall and thus lowers total carbon emissions."

	OffsetProgramExplanation = "Carbon offset programs: These are voluntary initiatives where you can invest money to support projects that reduce greenhouse gas emissions elsewhere (like planting trees, renewable energy, etc.). By contributing to such programs, you effectively compensate for the CO2 emitted by your flight."

	HowAreYouReply = "I'm doing great, thanks for asking! I'm ready to help you understand your carbon footprint. Tell me about a trip, your electricity usage, or your food."

	IdentityReply = "I'm your Carbon Offset Calculator. I estimate the CO2 produced by travel, electricity and food, and share tips to help you reduce it."

	GreetingReply = "Hello! How can I help you understand your carbon footprint today? Try something like \"car 50km\" or \"electricity 100kwh\"."

	FallbackMessage = "I'm not sure how to help with that. Try asking about car travel, flights, electricity usage, or food consumption!"

	ApologyMessage = "I'm sorry, I encountered an error. Please try again."
)

// 兜底回复附带的示例问题，每一条都能命中某条规则。
var suggestions = []string{
	"How much CO2 does a 50km car trip produce?",
	"car 20km and bus 15km",
	"flight 1000km",
	"electricity 100kwh",
	"meat 2kg",
	"What does combine trips mean?",
	"What is a carbon offset program?",
}

// Suggestions 返回兜底回复使用的示例问题列表。
func Suggestions() []string {
	out := make([]string, len(suggestions))
	copy(out, suggestions)
	return out
}
