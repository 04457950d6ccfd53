package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"github.com/restokorp/restaurant-app/models"
	"github.com/restokorp/restaurant-app/utils"
)

// AIService wraps a chat-completion API for the upsell/search/chat
// endpoints. All the logic here is prompt templating plus best-effort
// JSON extraction; when the model returns prose instead of JSON we fall
// back to matching dish names in the reply text.
type AIService struct {
	client llms.Model
	model  string
}

// NewAIService builds a client from OPENAI_API_KEY / OPENAI_BASE_URL /
// OPENAI_MODEL. Without a key the service runs in offline mode and serves
// canned answers so development setups keep working.
func NewAIService() *AIService {
	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}

	token := os.Getenv("OPENAI_API_KEY")
	if token == "" {
		utils.InfoLogger.Println("OPENAI_API_KEY not set, AI service running in offline mode")
		return &AIService{model: model}
	}

	opts := []openai.Option{
		openai.WithToken(token),
		openai.WithModel(model),
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		utils.ErrorLogger.Printf("Failed to create AI client, falling back to offline mode: %v", err)
		return &AIService{model: model}
	}
	return &AIService{client: client, model: model}
}

func (s *AIService) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := s.client.GenerateContent(ctx,
		[]llms.MessageContent{
			llms.TextParts(schema.ChatMessageTypeHuman, prompt),
		},
		llms.WithMaxTokens(1024),
		llms.WithTemperature(0.4),
	)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}
	return resp.Choices[0].Content, nil
}

// Chat answers a free-form analyst question.
func (s *AIService) Chat(ctx context.Context, message string) (string, error) {
	if s.client == nil {
		return offlineChatReply(message), nil
	}

	prompt := "You are an analytics assistant for a restaurant manager. " +
		"Answer briefly and concretely, in the language of the question.\n\nQuestion: " + message
	return s.complete(ctx, prompt)
}

type Recommendation struct {
	DishID   uint    `json:"dish_id"`
	DishName string  `json:"dish_name"`
	Reason   string  `json:"reason"`
	Score    float64 `json:"score"`
}

// UpsellRecommendations suggests dishes to add to an order.
func (s *AIService) UpsellRecommendations(ctx context.Context, orderedNames []string, menu []models.Dish) ([]Recommendation, error) {
	if s.client == nil {
		return offlineRecommendations(menu, 3), nil
	}

	var b strings.Builder
	b.WriteString("A restaurant guest has ordered: ")
	b.WriteString(strings.Join(orderedNames, ", "))
	b.WriteString(".\nAvailable menu:\n")
	for _, d := range menu {
		fmt.Fprintf(&b, "- id=%d %s (%.2f)\n", d.ID, d.Name, d.Price)
	}
	b.WriteString("\nSuggest up to 3 dishes from the menu that pair well with the order. " +
		`Reply with a JSON array only: [{"dish_id":1,"dish_name":"...","reason":"...","score":0.9}]`)

	reply, err := s.complete(ctx, b.String())
	if err != nil {
		return nil, err
	}

	var recs []Recommendation
	if err := unmarshalJSONArray(reply, &recs); err == nil && len(recs) > 0 {
		return recs, nil
	}

	// Model answered in prose: salvage by matching menu names in the text.
	utils.InfoLogger.Printf("AI upsell reply was not JSON, falling back to name matching")
	for _, d := range menu {
		if strings.Contains(strings.ToLower(reply), strings.ToLower(d.Name)) {
			recs = append(recs, Recommendation{DishID: d.ID, DishName: d.Name, Reason: "mentioned by assistant", Score: 0.5})
		}
	}
	return recs, nil
}

type SearchResult struct {
	DishID    uint    `json:"dish_id"`
	DishName  string  `json:"dish_name"`
	Relevance float64 `json:"relevance"`
	Reason    string  `json:"reason"`
}

// SearchMenu ranks menu dishes against a natural-language query.
func (s *AIService) SearchMenu(ctx context.Context, query string, menu []models.Dish) ([]SearchResult, error) {
	if s.client == nil {
		return offlineSearch(query, menu), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Guest query: %q\nMenu:\n", query)
	for _, d := range menu {
		fmt.Fprintf(&b, "- id=%d %s: %s\n", d.ID, d.Name, d.Composition)
	}
	b.WriteString("\nReturn the dishes matching the query as a JSON array only: " +
		`[{"dish_id":1,"dish_name":"...","relevance":0.9,"reason":"..."}]`)

	reply, err := s.complete(ctx, b.String())
	if err != nil {
		return nil, err
	}

	var results []SearchResult
	if err := unmarshalJSONArray(reply, &results); err == nil && len(results) > 0 {
		return results, nil
	}

	utils.InfoLogger.Printf("AI search reply was not JSON, falling back to name matching")
	return offlineSearch(query, menu), nil
}

// unmarshalJSONArray pulls the first [...] block out of a model reply.
// Models often wrap JSON in prose or markdown fences.
func unmarshalJSONArray(reply string, out interface{}) error {
	start := strings.Index(reply, "[")
	end := strings.LastIndex(reply, "]")
	if start < 0 || end <= start {
		return fmt.Errorf("no JSON array in reply")
	}
	return json.Unmarshal([]byte(reply[start:end+1]), out)
}

func offlineChatReply(message string) string {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "revenue") || strings.Contains(lower, "выручка"):
		return "Revenue analysis is available on the admin dashboard; connect an API key for AI commentary."
	case strings.Contains(lower, "popular") || strings.Contains(lower, "популярн"):
		return "Popular dishes are ranked on the admin dashboard from real order data."
	default:
		return "AI assistant is running in offline mode. Set OPENAI_API_KEY to enable live answers."
	}
}

func offlineRecommendations(menu []models.Dish, limit int) []Recommendation {
	var recs []Recommendation
	for _, d := range menu {
		if !d.IsAvailable {
			continue
		}
		recs = append(recs, Recommendation{DishID: d.ID, DishName: d.Name, Reason: "house recommendation", Score: 0.5})
		if len(recs) >= limit {
			break
		}
	}
	return recs
}

func offlineSearch(query string, menu []models.Dish) []SearchResult {
	var results []SearchResult
	q := strings.ToLower(query)
	for _, d := range menu {
		if strings.Contains(strings.ToLower(d.Name), q) || strings.Contains(strings.ToLower(d.Composition), q) {
			results = append(results, SearchResult{DishID: d.ID, DishName: d.Name, Relevance: 0.7, Reason: "name or composition match"})
		}
	}
	return results
}
