package catalog

import (
	"fmt"
	"strings"

	"grant-assistant-be/pkg/engine/answers"
	"grant-assistant-be/pkg/engine/graph"
)

// Business categories offered by the business_category question
const (
	CategoryRestaurant    = "restaurant"
	CategoryRetail        = "retail"
	CategoryBeauty        = "beauty"
	CategoryManufacturing = "manufacturing"
	CategoryService       = "service"
	CategoryOther         = "other"
)

var categoryLabels = map[string]string{
	CategoryRestaurant:    "Restaurant or cafe",
	CategoryRetail:        "Retail shop",
	CategoryBeauty:        "Beauty or wellness salon",
	CategoryManufacturing: "Manufacturing or workshop",
	CategoryService:       "Service business",
	CategoryOther:         "Other",
}

var categoryOrder = []string{
	CategoryRestaurant, CategoryRetail, CategoryBeauty, CategoryManufacturing, CategoryService, CategoryOther,
}

// keywords are checked in category order; the first category with a hit wins
var categoryKeywords = map[string][]string{
	CategoryRestaurant:    {"restaurant", "cafe", "café", "coffee", "bakery", "bar ", "izakaya", "ramen", "menu", "diner", "bistro", "food"},
	CategoryRetail:        {"shop", "store", "retail", "boutique", "sell ", "selling", "grocery", "goods"},
	CategoryBeauty:        {"salon", "beauty", "hair", "nail", "spa", "massage", "esthetic", "barber"},
	CategoryManufacturing: {"factory", "manufactur", "workshop", "produce", "production", "machining", "craft", "brewery"},
	CategoryService:       {"consult", "repair", "cleaning", "design", "agency", "school", "lesson", "care", "service"},
}

// DetectCategory guesses the business category from a free-text description
func DetectCategory(description string) string {
	text := " " + strings.ToLower(description) + " "
	for _, category := range categoryOrder {
		for _, kw := range categoryKeywords[category] {
			if strings.Contains(text, kw) {
				return category
			}
		}
	}
	return ""
}

// category prefers the chosen answer and falls back to detection
func category(set answers.AnswerSet) string {
	if chosen := strings.ToLower(strings.TrimSpace(set.Text("business_category"))); chosen != "" {
		return chosen
	}
	return DetectCategory(set.Text("business_description"))
}

// NewRegistry returns the resolvers referenced from questions.yaml
func NewRegistry() *graph.Registry {
	return graph.NewRegistry().
		RegisterText("categoryPrompt", categoryPrompt).
		RegisterText("mainProductsText", mainProductsText).
		RegisterText("managementPolicyText", managementPolicyText).
		RegisterText("salesTargetText", salesTargetText).
		RegisterText("goalRationaleHelp", goalRationaleHelp).
		RegisterText("categoryDetailText", categoryDetailText).
		RegisterOptions("categoryOptions", categoryOptions).
		RegisterOptions("channelOptions", channelOptions).
		RegisterCondition("hasEmployees", hasEmployees)
}

func categoryPrompt(set answers.AnswerSet) string {
	if detected := DetectCategory(set.Text("business_description")); detected != "" {
		return fmt.Sprintf("From your description this looks like a %s. Which category fits your business best?",
			strings.ToLower(categoryLabels[detected]))
	}
	return "Which category fits your business best?"
}

// categoryOptions lists the detected category first
func categoryOptions(set answers.AnswerSet) []graph.Option {
	detected := DetectCategory(set.Text("business_description"))
	options := make([]graph.Option, 0, len(categoryOrder))
	if detected != "" {
		options = append(options, graph.Option{Value: detected, Label: categoryLabels[detected]})
	}
	for _, c := range categoryOrder {
		if c != detected {
			options = append(options, graph.Option{Value: c, Label: categoryLabels[c]})
		}
	}
	return options
}

func mainProductsText(set answers.AnswerSet) string {
	switch category(set) {
	case CategoryRestaurant:
		return "What are your main menu items and their prices?"
	case CategoryRetail:
		return "What are your main product lines and their price range?"
	case CategoryBeauty:
		return "What are your main treatments or services and their prices?"
	case CategoryManufacturing:
		return "What do you manufacture, and for which kinds of clients?"
	default:
		return "What are your main products or services and their prices?"
	}
}

func managementPolicyText(set answers.AnswerSet) string {
	philosophy := strings.TrimSpace(set.Text("philosophy"))
	if philosophy == "" {
		return "What management policies will you follow over the next few years?"
	}
	if runes := []rune(philosophy); len(runes) > 60 {
		philosophy = string(runes[:60]) + "..."
	}
	return fmt.Sprintf("You described your philosophy as %q. Which concrete management policies put it into practice?", philosophy)
}

func salesTargetText(set answers.AnswerSet) string {
	if baseline, ok := set.Get("sales_baseline").Num(); ok && baseline > 0 {
		return fmt.Sprintf("Your sales last year were %s yen. What annual sales do you target three years from now?", groupDigits(int64(baseline)))
	}
	return "What annual sales do you target three years from now, in yen?"
}

func goalRationaleHelp(set answers.AnswerSet) string {
	baseline, okBase := set.Get("sales_baseline").Num()
	target, okTarget := set.Get("sales_target").Num()
	if !okBase || !okTarget || baseline <= 0 {
		return "Break the target down into customers, visits and unit prices, and say why each figure is achievable."
	}
	growth := (target/baseline - 1) * 100
	return fmt.Sprintf("That is %.0f%% growth. Break it down into customers, visits and unit prices, and say why each figure is achievable.", growth)
}

func categoryDetailText(set answers.AnswerSet) string {
	switch category(set) {
	case CategoryRestaurant:
		return "Tell us more about your restaurant: seats, opening hours and average spend per customer."
	case CategoryRetail:
		return "Tell us more about your shop: floor area, product range and average purchase."
	case CategoryBeauty:
		return "Tell us more about your salon: number of chairs or beds, staff and average treatment price."
	case CategoryManufacturing:
		return "Tell us more about your production: equipment, processes and lead times."
	default:
		return "Tell us more about how your business operates day to day."
	}
}

var baseChannels = []graph.Option{
	{Value: "website", Label: "Own website"},
	{Value: "sns", Label: "Social media"},
	{Value: "search_ads", Label: "Search advertising"},
	{Value: "flyers", Label: "Flyers and local print"},
	{Value: "events", Label: "Events and trade fairs"},
}

var categoryChannels = map[string][]graph.Option{
	CategoryRestaurant:    {{Value: "delivery_apps", Label: "Delivery apps"}, {Value: "gourmet_sites", Label: "Restaurant review sites"}},
	CategoryRetail:        {{Value: "ec_site", Label: "Online store"}, {Value: "marketplaces", Label: "Online marketplaces"}},
	CategoryBeauty:        {{Value: "booking_sites", Label: "Booking sites"}, {Value: "referrals", Label: "Referral programme"}},
	CategoryManufacturing: {{Value: "b2b_platforms", Label: "B2B platforms"}, {Value: "trade_shows", Label: "Trade shows"}},
}

func channelOptions(set answers.AnswerSet) []graph.Option {
	options := append([]graph.Option{}, categoryChannels[category(set)]...)
	return append(options, baseChannels...)
}

func hasEmployees(set answers.AnswerSet) bool {
	n, ok := set.Get("employee_count").Num()
	return ok && n > 0
}

func groupDigits(n int64) string {
	s := fmt.Sprintf("%d", n)
	if n < 0 {
		return "-" + groupDigits(-n)
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}
