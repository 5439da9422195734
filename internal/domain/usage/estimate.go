package usage

import "github.com/shopspring/decimal"

// EstimateTokens approximates provider-billed tokens for one chat turn at
// roughly four characters per token. This is coarse on purpose: the audit
// trail wants an order of magnitude, not authoritative metering.
func EstimateTokens(userMessage, assistantResponse string) int {
	return ceilDiv(len(assistantResponse), 4) + ceilDiv(len(userMessage), 4)
}

func ceilDiv(n, d int) int {
	return (n + d - 1) / d
}

// Per-token USD pricing used for the estimated-cost column. Unknown models
// get a conservative default.
var modelPricing = map[string]decimal.Decimal{
	"gpt-4o":                     decimal.NewFromFloat(0.00001),
	"gpt-4o-mini":                decimal.NewFromFloat(0.0000004),
	"gpt-3.5-turbo":              decimal.NewFromFloat(0.000001),
	"claude-3-5-sonnet-20240620": decimal.NewFromFloat(0.000009),
	"claude-3-haiku-20240307":    decimal.NewFromFloat(0.0000008),
}

var defaultPricing = decimal.NewFromFloat(0.0000045)

// EstimateCost converts an approximate token count into an estimated USD
// amount for the given model.
func EstimateCost(model string, tokens int) decimal.Decimal {
	price, ok := modelPricing[model]
	if !ok {
		price = defaultPricing
	}
	return price.Mul(decimal.NewFromInt(int64(tokens)))
}
