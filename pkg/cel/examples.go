package cel

// ConditionExpressionExamples provides example condition expressions surfaced
// by the authoring API so template authors have working starting points.
var ConditionExpressionExamples = map[string]string{
	"simple_equals":       `facts.order.status == "paid"`,
	"numeric_threshold":   `facts.order.total > 100.0`,
	"trigger_match":       `trigger == "order_placed"`,
	"identifier_present":  `has(identifiers.order) && identifiers.order != ""`,
	"in_list":             `facts.order.status in ["paid", "shipped"]`,
	"combined_conditions": `facts.order.status == "paid" && facts.order.total > 50.0`,
	"nested_field":        `facts.user.tier == "premium"`,
	"has_field":           `has(facts.user.email) && facts.user.email != ""`,
}
