package retrieve

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/befundlink/internal/model"
	"github.com/sashabaranov/go-openai"
)

const systemPrompt = `You extract verbatim evidence excerpts from clinical finding documents ("Befunde").
Answer with a JSON object of the form {"excerpts": [{"befund_id": "...", "label": "...", "text": "..."}]}.
Every "text" must be copied word for word from the document named by "befund_id".
Only use the labels you are given. Return an empty list when nothing is relevant.`

// OpenAIRetriever asks a chat model for excerpts and maps them back onto
// document tokens. It works with any OpenAI-compatible endpoint (Ollama
// included).
type OpenAIRetriever struct {
	client    *openai.Client
	model     string
	maxTokens int
	timeout   time.Duration
	name      string
}

// NewOpenAIRetriever creates a retriever from the retrieval config. An API
// key is required unless a custom BaseURL is set.
func NewOpenAIRetriever(cfg model.RetrievalConfig) (*OpenAIRetriever, error) {
	if cfg.APIKey == "" && cfg.BaseURL == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	clientConfig.HTTPClient = newHTTPClient(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy)

	modelName := cfg.Model
	if modelName == "" {
		modelName = openai.GPT4oMini
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2000
	}
	name := cfg.Provider
	if name == "" {
		name = "openai"
	}

	return &OpenAIRetriever{
		client:    openai.NewClientWithConfig(clientConfig),
		model:     modelName,
		maxTokens: maxTokens,
		timeout:   timeout,
		name:      name,
	}, nil
}

// Name identifies provider and model, e.g. "openai/gpt-4o-mini"
func (r *OpenAIRetriever) Name() string {
	return r.name + "/" + r.model
}

type excerptResponse struct {
	Excerpts []struct {
		BefundID string `json:"befund_id"`
		Label    string `json:"label"`
		Text     string `json:"text"`
	} `json:"excerpts"`
}

func (r *OpenAIRetriever) RetrieveForTable(ctx context.Context, columns []model.Column, docs []model.Document) (map[string][]model.Span, error) {
	out := make(map[string][]model.Span)
	if len(docs) == 0 || len(columns) == 0 {
		return out, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(columns, docs)},
		},
		MaxTokens:   r.maxTokens,
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%s API error: %w", r.name, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from %s", r.name)
	}

	out, err = mapExcerpts(resp.Choices[0].Message.Content, columns, docs)
	if err != nil {
		return nil, fmt.Errorf("decode %s response: %w", r.name, err)
	}
	return out, nil
}

// mapExcerpts decodes a model answer and maps each excerpt back onto the
// tokens of its document. Excerpts that name an unknown document or label,
// or that are not verbatim, are dropped.
func mapExcerpts(content string, columns []model.Column, docs []model.Document) (map[string][]model.Span, error) {
	var parsed excerptResponse
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &parsed); err != nil {
		return nil, err
	}

	tokensByID := make(map[string][]string, len(docs))
	for _, d := range docs {
		tokensByID[d.ID] = Tokenize(d.Text)
	}
	labels := make(map[string]bool, len(columns))
	for _, c := range columns {
		labels[c.Name] = true
	}

	out := make(map[string][]model.Span)
	for _, ex := range parsed.Excerpts {
		tokens, ok := tokensByID[ex.BefundID]
		if !ok || !labels[ex.Label] {
			continue
		}
		start, end, found := LocateExcerpt(tokens, ex.Text)
		if !found {
			continue
		}
		out[ex.Label] = append(out[ex.Label], model.Span{
			BefundID: ex.BefundID,
			StartTok: start,
			EndTok:   end,
			Text:     spanText(tokens, start, end),
			Label:    ex.Label,
		})
	}
	return out, nil
}

// BuildPrompt renders the user message listing labels and documents
func BuildPrompt(columns []model.Column, docs []model.Document) string {
	var sb strings.Builder

	sb.WriteString("Labels:\n")
	for _, c := range columns {
		sb.WriteString("- " + c.Name)
		if len(c.Keywords) > 0 {
			sb.WriteString(" (e.g. " + strings.Join(c.Keywords, ", ") + ")")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\nDocuments:\n")
	for _, d := range docs {
		fmt.Fprintf(&sb, "\n### befund_id: %s\n%s\n", d.ID, d.Text)
	}

	sb.WriteString("\nReturn the relevant excerpts per label as JSON.")
	return sb.String()
}

// stripCodeFence removes a ```json fence some models wrap their answer in
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
