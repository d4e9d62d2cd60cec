package openai

import (
	"sync"

	"verifact/pkg/ai"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// VerifyOpenAIClient is a client for OpenAI-compatible chat endpoints used by
// the fact-checking pipeline. It keeps separate model names for free-text
// generation and structured extraction tasks.
//
// A VerifyOpenAIClient should be created using NewVerifyOpenAIClient.
type VerifyOpenAIClient struct {
	completionModel string
	extractionModel string

	chatURL string
	chatKey string

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	ChatClient *openai.Client
}

// NewVerifyOpenAIClientParams defines the configuration parameters for
// creating a new VerifyOpenAIClient.
//
// CompletionModel specifies the model used for plain completions such as
// summaries and search queries. ExtractionModel specifies the model used for
// schema-constrained extraction and comparison. ChatURL and ChatKey configure
// the chat/completion API endpoint; an empty ChatURL means the default OpenAI
// endpoint.
type NewVerifyOpenAIClientParams struct {
	CompletionModel string
	ExtractionModel string

	ChatURL string
	ChatKey string
}

// NewVerifyOpenAIClient creates and returns a new VerifyOpenAIClient
// configured with the provided parameters.
//
// Example:
//
//	params := openai.NewVerifyOpenAIClientParams{
//		CompletionModel: "gpt-4o-mini",
//		ExtractionModel: "gpt-4o-mini",
//		ChatURL:         "https://api.openai.com/v1",
//		ChatKey:         os.Getenv("OPENAI_API_KEY"),
//	}
//	client := openai.NewVerifyOpenAIClient(params)
func NewVerifyOpenAIClient(
	params NewVerifyOpenAIClientParams,
) *VerifyOpenAIClient {
	chatClient := newOpenaiClient(params.ChatURL, params.ChatKey)

	return &VerifyOpenAIClient{
		completionModel: params.CompletionModel,
		extractionModel: params.ExtractionModel,

		chatURL: params.ChatURL,
		chatKey: params.ChatKey,

		metricsLock: sync.Mutex{},
		metrics: ai.ModelMetrics{
			InputTokens:  0,
			OutputTokens: 0,
			TotalTokens:  0,
			DurationMs:   0,
		},

		ChatClient: chatClient,
	}
}

func newOpenaiClient(
	baseURL string,
	apiKey string,
) *openai.Client {
	if apiKey == "" {
		return nil
	}
	options := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}

	if baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(options...)

	return &client
}
