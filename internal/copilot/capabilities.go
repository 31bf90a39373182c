package copilot

// Capability is one advertised co-pilot feature.
type Capability struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Endpoint    string `json:"endpoint"`
	Available   bool   `json:"available"`
}

// Capabilities is the feature listing returned to clients.
type Capabilities struct {
	Provider          string       `json:"provider,omitempty"`
	PrivacyMode       string       `json:"privacy_mode"`
	Capabilities      []Capability `json:"capabilities"`
	GenerativeEnabled bool         `json:"gemini_integration"`
	Refinement        bool         `json:"categorization_refinement"`
}

// Describe lists the co-pilot features and whether the generative provider
// backing them is wired.
func Describe(gen Generator) Capabilities {
	on := available(gen)
	provider := ""
	if on {
		provider = gen.Provider()
	}

	return Capabilities{
		Capabilities: []Capability{
			{
				Name:        "Trip Budget Planning",
				Description: "Generate detailed travel budgets based on destinations and preferences",
				Endpoint:    "/trip-budgeter",
				Available:   on,
			},
			{
				Name:        "Personal Finance Assistant",
				Description: "Get personalized spending advice and financial guidance",
				Endpoint:    "/assistant",
				Available:   on,
			},
			{
				Name:        "Spending Analysis",
				Description: "Analyze spending patterns and provide optimization suggestions",
				Endpoint:    "/assistant",
				Available:   on,
			},
		},
		GenerativeEnabled: on,
		Refinement:        on,
		Provider:          provider,
		PrivacyMode:       "enabled",
	}
}
