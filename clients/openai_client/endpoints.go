package openai_client

const (
	// Base URL
	BaseURL = "https://api.openai.com/v1"

	// API Endpoints
	ChatCompletionsEndpoint = "/chat/completions"

	// Models
	DefaultModel = "gpt-4o-mini"

	// Headers
	AuthorizationHeader = "Authorization"
	ContentTypeHeader   = "Content-Type"
)
