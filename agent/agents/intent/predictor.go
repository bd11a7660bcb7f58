package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	openaisdk "github.com/openai/openai-go"
	contractx "github.com/tanpawarit/flightdesk/agent/contract"
)

// Prediction is the raw structured answer of the model. Confidence is a
// pointer so a missing field is distinguishable from zero.
type Prediction struct {
	Intent     string   `json:"intent" validate:"required"`
	Confidence *float64 `json:"confidence" validate:"required,gte=0,lte=1"`
}

// Predictor asks a model for one Prediction.
type Predictor interface {
	Predict(ctx context.Context, text string) (Prediction, error)
}

type graphPredictor struct {
	runner compose.Runnable[string, *schema.Message]
	parser schema.MessageParser[Prediction]
}

// NewGraphPredictor parses the model's message content as JSON.
func NewGraphPredictor(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (Predictor, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("%w: chat model is required", contractx.ErrValidation)
	}
	runner, err := compileClassifierGraph(ctx, chatModel, systemPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}
	return &graphPredictor{
		runner: runner,
		parser: schema.NewMessageJSONParser[Prediction](&schema.MessageJSONParseConfig{
			ParseFrom: schema.MessageParseFromContent,
		}),
	}, nil
}

func (p *graphPredictor) Predict(ctx context.Context, text string) (Prediction, error) {
	msg, err := p.runner.Invoke(ctx, text)
	if err != nil {
		return Prediction{}, fmt.Errorf("%w: classifier invoke: %v", contractx.ErrModelInvoke, err)
	}
	out, err := p.parser.Parse(ctx, msg)
	if err != nil {
		return Prediction{}, fmt.Errorf("%w: %v", contractx.ErrMalformedClassification, err)
	}
	return out, nil
}

var predictionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"intent": map[string]any{
			"type": "string",
			"enum": intentLabels(),
		},
		"confidence": map[string]any{
			"type":    "number",
			"minimum": 0,
			"maximum": 1,
		},
	},
	"required":             []string{"intent", "confidence"},
	"additionalProperties": false,
}

func intentLabels() []string {
	labels := make([]string, 0, len(contractx.AllIntents))
	for _, i := range contractx.AllIntents {
		labels = append(labels, string(i))
	}
	return labels
}

type schemaPredictor struct {
	client       *openaisdk.Client
	model        string
	systemPrompt string
}

// NewSchemaPredictor requests a strict JSON schema response through the
// chat completions API.
func NewSchemaPredictor(client *openaisdk.Client, model, systemPrompt string) (Predictor, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: openai client is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("%w: classifier model is required", contractx.ErrValidation)
	}
	return &schemaPredictor{client: client, model: strings.TrimSpace(model), systemPrompt: systemPrompt}, nil
}

func (p *schemaPredictor) Predict(ctx context.Context, text string) (Prediction, error) {
	completion, err := p.client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model: openaisdk.ChatModel(p.model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(p.systemPrompt),
			openaisdk.UserMessage(text),
		},
		Temperature: openaisdk.Float(0),
		ResponseFormat: openaisdk.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openaisdk.ResponseFormatJSONSchemaParam{
				JSONSchema: openaisdk.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "intent_classification",
					Strict: openaisdk.Bool(true),
					Schema: predictionSchema,
				},
			},
		},
	})
	if err != nil {
		return Prediction{}, fmt.Errorf("%w: classifier completion: %v", contractx.ErrModelInvoke, err)
	}
	if len(completion.Choices) == 0 {
		return Prediction{}, fmt.Errorf("%w: no choices returned", contractx.ErrMalformedClassification)
	}

	var out Prediction
	content := stripFence(completion.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return Prediction{}, fmt.Errorf("%w: %v", contractx.ErrMalformedClassification, err)
	}
	return out, nil
}

func stripCodeFence(_ context.Context, msg *schema.Message) (*schema.Message, error) {
	if msg == nil {
		return nil, fmt.Errorf("%w: empty model message", contractx.ErrMalformedClassification)
	}
	cleaned := *msg
	cleaned.Content = stripFence(msg.Content)
	return &cleaned, nil
}

func stripFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimPrefix(content, "json")
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}
