// Package llm provides the model-backed intent extractor. It asks a chat
// model for a strict JSON reading of the request and coerces every field, so
// a misbehaving model degrades to defaults instead of failing the request.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/convene/internal/intent/domain"
	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const systemPrompt = `You analyze meeting request emails and extract scheduling details.
Pay attention to context, relationships between meetings, and urgency indicators:
urgency keywords (urgent, asap, critical, before), preparation meetings (prep,
prior to), workshops (training, all-day, educational), client context (client,
customer, external, presentation), and time sensitivity (deadline, tomorrow,
this week). Return only the requested JSON.`

// intentSchema is the shape requested from the model. Every field is a
// scalar string; numeric and enum coercion happens after decoding.
type intentSchema struct {
	TimeConstraints       string `json:"time_constraints" jsonschema_description:"Day of week like thursday, or today, or flexible"`
	MeetingDuration       string `json:"meeting_duration" jsonschema_description:"Meeting length in minutes"`
	Urgency               string `json:"urgency" jsonschema_description:"critical, high, medium, or low"`
	MeetingType           string `json:"meeting_type" jsonschema_description:"prep, workshop, client, planning, status, review, urgent, or internal"`
	PriorityContext       string `json:"priority_context" jsonschema_description:"Why this meeting is urgent or important"`
	MeetingRelationship   string `json:"meeting_relationship" jsonschema_description:"prep_meeting, workshop, client_facing, or internal"`
	SchedulingConstraints string `json:"scheduling_constraints" jsonschema_description:"Specific timing requirements mentioned"`
	Participants          string `json:"participants" jsonschema_description:"Comma-separated email list, or empty"`
}

// Config holds connection settings for the model endpoint.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Extractor calls a chat model with a strict JSON-schema response format.
type Extractor struct {
	client openai.Client
	model  string
	logger *slog.Logger
}

// NewExtractor creates a model-backed extractor.
func NewExtractor(cfg Config, logger *slog.Logger) (*Extractor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &Extractor{
		client: openai.NewClient(opts...),
		model:  model,
		logger: logger,
	}, nil
}

// Extract asks the model for a structured reading of the request text.
func (e *Extractor) Extract(ctx context.Context, body, subject string) (domain.MeetingIntent, error) {
	userPrompt := fmt.Sprintf("Email Subject: %s\nEmail Content: %s", subject, body)

	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "meeting_intent",
		Description: openai.String("Structured meeting request details"),
		Schema:      generateSchema[intentSchema](),
		Strict:      openai.Bool(true),
	}

	params := openai.ChatCompletionNewParams{
		Model: e.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		MaxTokens:   openai.Int(400),
		Temperature: openai.Float(0),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: schemaParam,
			},
		},
	}

	start := time.Now()
	resp, err := e.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return domain.MeetingIntent{}, fmt.Errorf("intent chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return domain.MeetingIntent{}, fmt.Errorf("no choices in intent response")
	}

	e.logger.Debug("intent extraction completed",
		"model", e.model,
		"duration_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
	)

	return decodeIntent([]byte(resp.Choices[0].Message.Content))
}

// decodeIntent maps model output onto a MeetingIntent. Decoding is
// deliberately loose: models occasionally return objects where scalars were
// requested, and those fields collapse to defaults rather than erroring.
func decodeIntent(raw []byte) (domain.MeetingIntent, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return domain.MeetingIntent{}, fmt.Errorf("unmarshal intent response: %w", err)
	}

	intent := domain.Default()
	intent.Source = domain.SourceModel
	intent.DurationMinutes = domain.CoerceDuration(scalar(fields["meeting_duration"]))
	intent.DayPreference = domain.CoerceDayPreference(scalar(fields["time_constraints"]))
	intent.Urgency = domain.ParseUrgency(scalar(fields["urgency"]))
	intent.Category = domain.ParseCategory(scalar(fields["meeting_type"]))
	intent.Relationship = domain.ParseRelationship(scalar(fields["meeting_relationship"]))
	intent.Context = scalar(fields["priority_context"])
	intent.Constraints = scalar(fields["scheduling_constraints"])
	intent.Participants = domain.SplitParticipants(scalar(fields["participants"]))
	return intent, nil
}

// scalar renders a raw JSON value as a plain string. Strings and numbers
// pass through; compound values yield the empty string so callers coerce
// them to defaults.
func scalar(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return strconv.FormatInt(int64(n), 10)
	}
	return ""
}

func generateSchema[T any]() any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

// Model returns the configured model name.
func (e *Extractor) Model() string {
	return strings.TrimSpace(e.model)
}
