package costs

// Pricing holds USD rates per million tokens for a backend model.
type Pricing struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// modelPricing maps model identifiers to their rates. Adding a model is a
// table entry here, never a change at a call site.
var modelPricing = map[string]Pricing{
	"claude-sonnet-4-20250514":  {InputPerMTok: 3.00, OutputPerMTok: 15.00},
	"claude-opus-4-20250514":    {InputPerMTok: 15.00, OutputPerMTok: 75.00},
	"claude-3-5-haiku-20241022": {InputPerMTok: 0.80, OutputPerMTok: 4.00},
}

// defaultPricing covers models absent from the table.
var defaultPricing = Pricing{InputPerMTok: 3.00, OutputPerMTok: 15.00}

// PricingFor returns the rates for a model, falling back to the default
// rates for unknown models.
func PricingFor(model string) Pricing {
	if p, ok := modelPricing[model]; ok {
		return p
	}
	return defaultPricing
}

// Cost prices a token count pair: two linear terms, summed.
func (p Pricing) Cost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)/1e6*p.InputPerMTok + float64(outputTokens)/1e6*p.OutputPerMTok
}
