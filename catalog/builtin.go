package catalog

func openAIChatModels() []Model {
	return []Model{
		{ID: "gpt-4o", Name: "GPT-4o", Summary: "latest", Description: "Latest-generation multimodal model balancing quality and latency.", Provider: "openai"},
		{ID: "gpt-4o-mini", Name: "GPT-4o Mini", Summary: "light", Description: "Compact, economical version of GPT-4o.", Provider: "openai"},
		{ID: "gpt-4-turbo", Name: "GPT-4 Turbo", Summary: "premium", Description: "Advanced model with extended context.", Provider: "openai"},
		{ID: "o1-preview", Name: "O1 Preview", Summary: "reasoning", Description: "Advanced reasoning model for complex problems.", Provider: "openai"},
		{ID: "o1-mini", Name: "O1 Mini", Summary: "light reasoning", Description: "Compact O1 for fast reasoning.", Provider: "openai"},
	}
}

func anthropicGroup() ModelGroup {
	return ModelGroup{
		ID:    "anthropic-claude",
		Label: "Anthropic - Claude",
		Models: []Model{
			{ID: "claude-3-7-sonnet-20250219", Name: "Claude 3.7 Sonnet", Summary: "latest", Description: "Latest generation with stronger reasoning and extended context.", Provider: "anthropic"},
			{ID: "claude-3-5-sonnet-20241022", Name: "Claude 3.5 Sonnet", Summary: "balanced", Description: "Advanced reasoning at a controlled cost.", Provider: "anthropic"},
			{ID: "claude-3-5-haiku-20241022", Name: "Claude 3.5 Haiku", Summary: "fast", Description: "Low latency and concise answers.", Provider: "anthropic"},
			{ID: "claude-3-opus-20240229", Name: "Claude 3 Opus", Summary: "premium", Description: "Maximum quality for complex tasks.", Provider: "anthropic"},
		},
	}
}

func googleGroup() ModelGroup {
	return ModelGroup{
		ID:    "google-gemini",
		Label: "Google - Gemini",
		Models: []Model{
			{ID: "gemini-2.0-flash-exp", Name: "Gemini 2.0 Flash Experimental", Summary: "experimental", Description: "Next-generation experimental release with advanced multimodality.", Provider: "google"},
			{ID: "gemini-1.5-pro", Name: "Gemini 1.5 Pro", Summary: "multimodal", Description: "Text, image and code with context up to 2M tokens.", Provider: "google"},
			{ID: "gemini-1.5-flash", Name: "Gemini 1.5 Flash", Summary: "high volume", Description: "Fast responses for high-traffic workloads.", Provider: "google"},
			{ID: "gemini-1.5-flash-8b", Name: "Gemini 1.5 Flash-8B", Summary: "ultra light", Description: "Ultra compact for high volume at low cost.", Provider: "google"},
		},
	}
}

// ServerGroups is the catalog served by /api/config when no catalog file is configured.
func ServerGroups() []ModelGroup {
	return []ModelGroup{
		{ID: "openai-chat", Label: "OpenAI - Chat", Models: openAIChatModels()},
		anthropicGroup(),
		googleGroup(),
	}
}

// Fallback is the catalog the client uses when /api/config cannot be reached.
// It also lists the image and search models the server catalog omits.
func Fallback() []ModelGroup {
	openai := append(openAIChatModels(),
		Model{ID: "dall-e-3", Name: "DALL-E 3", Summary: "images", Description: "Detailed image generation from prompts.", Provider: "openai"},
		Model{ID: "dall-e-2", Name: "DALL-E 2", Summary: "images", Description: "Lightweight alternative for image creation.", Provider: "openai"},
	)

	return []ModelGroup{
		{ID: "openai-chat", Label: "OpenAI - Chat", Models: openai},
		anthropicGroup(),
		googleGroup(),
		{
			ID:    "perplexity-sonar",
			Label: "Perplexity - Sonar",
			Models: []Model{
				{ID: "sonar-pro", Name: "Sonar Pro", Summary: "search", Description: "Combines RAG with up-to-date web search.", Provider: "perplexity"},
				{ID: "sonar", Name: "Sonar", Summary: "balanced", Description: "Good trade-off between cost and source coverage.", Provider: "perplexity"},
			},
		},
		{
			ID:    "deepseek",
			Label: "DeepSeek",
			Models: []Model{
				{ID: "deepseek-chat", Name: "DeepSeek Chat", Summary: "analytical", Description: "General model focused on reasoning.", Provider: "deepseek"},
				{ID: "deepseek-reasoner", Name: "DeepSeek Reasoner", Summary: "deep reasoning", Description: "Specialised in complex reasoning and analysis.", Provider: "deepseek"},
			},
		},
	}
}
