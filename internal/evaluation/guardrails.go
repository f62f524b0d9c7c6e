package evaluation

type GuardrailConfig struct {
	MinIntentConfidence float64
	MaxResults          int
}

type Guardrails struct {
	config GuardrailConfig
}

func NewGuardrails(config GuardrailConfig) *Guardrails {
	if config.MaxResults <= 0 {
		config.MaxResults = 20
	}
	return &Guardrails{config: config}
}

func (g *Guardrails) ShouldProcess(confidence float64) bool {
	return confidence >= g.config.MinIntentConfidence
}

func (g *Guardrails) LimitResults(results []string) []string {
	if len(results) > g.config.MaxResults {
		return results[:g.config.MaxResults]
	}
	return results
}
