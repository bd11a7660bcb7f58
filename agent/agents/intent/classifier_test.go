package intent

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/flightdesk/agent/contract"
	openrouterx "github.com/tanpawarit/flightdesk/pkg/openrouter"
)

type fakeChatModel struct {
	responses []*schema.Message
	err       error
	idx       int
	inputs    [][]*schema.Message
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return nil, f.err
	}
	if f.idx >= len(f.responses) {
		return nil, errors.New("no fake response left")
	}
	msg := f.responses[f.idx]
	f.idx++
	return msg, nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not implemented in fake model")
}

func newTestClassifier(t *testing.T, fake *fakeChatModel) *Classifier {
	t.Helper()

	predictor, err := NewGraphPredictor(context.Background(), fake, "classify the intent")
	if err != nil {
		t.Fatalf("NewGraphPredictor() error = %v", err)
	}
	classifier, err := New(predictor, Config{Timeout: time.Second})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return classifier
}

func TestClassifySuccess(t *testing.T) {
	t.Parallel()

	fake := &fakeChatModel{
		responses: []*schema.Message{
			{Role: schema.Assistant, Content: `{"intent":"FLIGHT_SEARCH","confidence":0.92}`},
		},
	}
	classifier := newTestClassifier(t, fake)

	out, err := classifier.Classify(context.Background(), "find flights AMM to DOH on 2025-10-10")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if out.Intent != contractx.IntentFlightSearch {
		t.Fatalf("unexpected intent: %s", out.Intent)
	}
	if out.Confidence != 0.92 {
		t.Fatalf("unexpected confidence: %v", out.Confidence)
	}

	if len(fake.inputs) != 1 || len(fake.inputs[0]) != 2 {
		t.Fatalf("expected system and user messages, got %#v", fake.inputs)
	}
	if fake.inputs[0][1].Content != "find flights AMM to DOH on 2025-10-10" {
		t.Fatalf("unexpected user message: %q", fake.inputs[0][1].Content)
	}
}

func TestClassifyAcceptsFencedJSONAndZeroConfidence(t *testing.T) {
	t.Parallel()

	fake := &fakeChatModel{
		responses: []*schema.Message{
			{Role: schema.Assistant, Content: "```json\n{\"intent\":\"small_talk\",\"confidence\":0}\n```"},
		},
	}

	out, err := newTestClassifier(t, fake).Classify(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if out.Intent != contractx.IntentSmallTalk || out.Confidence != 0 {
		t.Fatalf("unexpected classification: %+v", out)
	}
}

func TestClassifyMalformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{name: "unknown intent", content: `{"intent":"HOTEL_SEARCH","confidence":0.9}`},
		{name: "confidence above one", content: `{"intent":"HELP","confidence":1.5}`},
		{name: "negative confidence", content: `{"intent":"HELP","confidence":-0.1}`},
		{name: "missing confidence", content: `{"intent":"HELP"}`},
		{name: "missing intent", content: `{"confidence":0.5}`},
		{name: "not json", content: `FLIGHT_SEARCH`},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			fake := &fakeChatModel{
				responses: []*schema.Message{{Role: schema.Assistant, Content: tc.content}},
			}
			_, err := newTestClassifier(t, fake).Classify(context.Background(), "x")
			if !errors.Is(err, contractx.ErrMalformedClassification) {
				t.Fatalf("expected ErrMalformedClassification, got %v", err)
			}
		})
	}
}

func TestClassifyPromptWithBracesIsSentVerbatim(t *testing.T) {
	t.Parallel()

	systemPrompt := `Answer like {"intent":"HELP","confidence":0.5} and nothing else.`
	fake := &fakeChatModel{
		responses: []*schema.Message{
			{Role: schema.Assistant, Content: `{"intent":"HELP","confidence":0.77}`},
		},
	}
	predictor, err := NewGraphPredictor(context.Background(), fake, systemPrompt)
	if err != nil {
		t.Fatalf("NewGraphPredictor() error = %v", err)
	}
	classifier, err := New(predictor, Config{Timeout: time.Second})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	out, err := classifier.Classify(context.Background(), "what can you do {today}?")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if out.Intent != contractx.IntentHelp {
		t.Fatalf("unexpected intent: %s", out.Intent)
	}
	if got := fake.inputs[0][0].Content; got != systemPrompt {
		t.Fatalf("system prompt was rewritten: %q", got)
	}
	if got := fake.inputs[0][1].Content; got != "what can you do {today}?" {
		t.Fatalf("user message was rewritten: %q", got)
	}
}

func TestClassifyModelFailure(t *testing.T) {
	t.Parallel()

	fake := &fakeChatModel{err: errors.New("upstream down")}
	_, err := newTestClassifier(t, fake).Classify(context.Background(), "x")
	if !errors.Is(err, contractx.ErrModelInvoke) {
		t.Fatalf("expected ErrModelInvoke, got %v", err)
	}
}

func TestNewRequiresPredictor(t *testing.T) {
	t.Parallel()

	if _, err := New(nil, Config{}); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func chatCompletionBody(t *testing.T, content string) []byte {
	t.Helper()

	body, err := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "test-model",
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]any{
					"role":    "assistant",
					"content": content,
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("marshal completion: %v", err)
	}
	return body
}

func TestSchemaPredictorRequestsStrictSchema(t *testing.T) {
	t.Parallel()

	requests := make(chan map[string]any, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		requests <- req
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(chatCompletionBody(t, `{"intent":"LIST_TRIPS","confidence":0.81}`))
	}))
	defer server.Close()

	client := openrouterx.NewClient(openrouterx.Config{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Timeout: time.Second,
	})
	predictor, err := NewSchemaPredictor(client, "test-model", "classify the intent")
	if err != nil {
		t.Fatalf("NewSchemaPredictor() error = %v", err)
	}
	classifier, err := New(predictor, Config{Timeout: time.Second})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	out, err := classifier.Classify(context.Background(), "show my saved trips")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if out.Intent != contractx.IntentListTrips || out.Confidence != 0.81 {
		t.Fatalf("unexpected classification: %+v", out)
	}

	req := <-requests
	format, ok := req["response_format"].(map[string]any)
	if !ok || format["type"] != "json_schema" {
		t.Fatalf("expected json_schema response format, got %#v", req["response_format"])
	}
	if req["model"] != "test-model" {
		t.Fatalf("unexpected model: %v", req["model"])
	}
}

func TestSchemaPredictorMalformedContent(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(chatCompletionBody(t, "I think it's a flight search"))
	}))
	defer server.Close()

	client := openrouterx.NewClient(openrouterx.Config{BaseURL: server.URL, APIKey: "test-key", Timeout: time.Second})
	predictor, err := NewSchemaPredictor(client, "test-model", "classify the intent")
	if err != nil {
		t.Fatalf("NewSchemaPredictor() error = %v", err)
	}

	_, err = predictor.Predict(context.Background(), "x")
	if !errors.Is(err, contractx.ErrMalformedClassification) {
		t.Fatalf("expected ErrMalformedClassification, got %v", err)
	}
}
