package segmentation

import (
	"context"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Client calls the external segmentation model. It performs exactly one
// request per Segment call; retry policy belongs to the caller.
type Client struct {
	api         openai.Client
	model       string
	temperature float64
}

// NewClient builds a segmentation client against an OpenAI-compatible
// endpoint. baseURL may be empty for the default endpoint.
func NewClient(baseURL, apiKey, model string, temperature float64) *Client {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &Client{
		api:         openai.NewClient(opts...),
		model:       model,
		temperature: temperature,
	}
}

// responseSchema reflects the Result type into a JSON schema for structured
// output, so the model's reply is constrained to the segmentation tree shape.
func responseSchema() any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	return reflector.Reflect(&Result{})
}

// Segment sends the reference script and formatted question list to the
// model and returns the parsed segmentation tree. A response that cannot be
// parsed into a valid tree is an error, never partial data. The call blocks
// until the model answers or ctx is cancelled.
func (c *Client) Segment(ctx context.Context, script string, questions []Question) (*Result, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("no questions to segment")
	}

	prompt := BuildPrompt(script, questions)
	body := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        "interview_segmentation",
					Description: openai.String("Hierarchical assignment of interview questions to script sections"),
					Schema:      responseSchema(),
					Strict:      openai.Bool(true),
				},
			},
		},
		Temperature: openai.Float(c.temperature),
	}

	response, err := c.api.Chat.Completions.New(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("segmentation request: %w", err)
	}
	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("segmentation response has no choices")
	}
	message := response.Choices[0].Message.Content
	if message == "" {
		return nil, fmt.Errorf("empty segmentation response (finish_reason: %s)", response.Choices[0].FinishReason)
	}

	var result Result
	if err := unmarshalFlexible(message, &result); err != nil {
		return nil, fmt.Errorf("parse segmentation response: %w", err)
	}
	if err := validate(&result); err != nil {
		return nil, fmt.Errorf("invalid segmentation tree: %w", err)
	}
	return &result, nil
}
