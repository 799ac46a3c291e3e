package services

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/harentsoaR/ayursutra-api/internal/logger"
)

const (
	chatTopK          = 3
	chatMinSimilarity = 0.1
	chatHistoryTurns  = 4
)

const chatSystemPrompt = `You are AyurBot, an Ayurvedic wellness assistant for the AyurSutra Panchakarma patient management system. You give practical guidance based on classical Ayurvedic principles.

- Ground answers in the three doshas (Vata, Pitta, Kapha) and their balance.
- Suggest lifestyle, diet or treatment considerations the user can act on.
- Never diagnose medical conditions; your guidance is educational, not medical advice.
- Always remind users to consult their practitioner for personalised care.

Use the knowledge passages and conversation history below when they are relevant.`

type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Message             string     `json:"message" binding:"required"`
	ConversationHistory []ChatTurn `json:"conversation_history"`
}

type ChatResponse struct {
	Response string   `json:"response"`
	Sources  []string `json:"sources"`
}

type ChatbotHealth struct {
	Status               string `json:"status"`
	KnowledgeBaseEntries int    `json:"knowledge_base_entries"`
	APIKeyConfigured     bool   `json:"api_key_configured"`
}

type ChatbotConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// ChatbotService answers wellness questions with Gemini, grounded in a small
// keyword knowledge base.
type ChatbotService struct {
	client *resty.Client
	cfg    ChatbotConfig
	kb     []KnowledgeEntry
	vocab  map[string]bool
	log    *logger.Logger
}

func NewChatbotService(cfg ChatbotConfig, log *logger.Logger) *ChatbotService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if log == nil {
		log = logger.Nop()
	}

	s := &ChatbotService{
		client: resty.New().SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).SetTimeout(cfg.Timeout),
		cfg:    cfg,
		kb:     ayurvedicKnowledge,
		vocab:  make(map[string]bool),
		log:    log.With("service", "chatbot"),
	}
	for _, e := range s.kb {
		for _, w := range tokenize(e.Content) {
			s.vocab[w] = true
		}
		for _, k := range e.Keywords {
			s.vocab[strings.ToLower(k)] = true
		}
	}
	return s
}

func (s *ChatbotService) Health() ChatbotHealth {
	return ChatbotHealth{
		Status:               "healthy",
		KnowledgeBaseEntries: len(s.kb),
		APIKeyConfigured:     s.cfg.APIKey != "",
	}
}

var wordPattern = regexp.MustCompile(`\w+`)

func tokenize(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}

func (s *ChatbotService) vector(text string) map[string]float64 {
	v := make(map[string]float64)
	for _, w := range tokenize(text) {
		if s.vocab[w] {
			v[w]++
		}
	}
	return v
}

func cosine(a, b map[string]float64) float64 {
	var dot, magA, magB float64
	for w, x := range a {
		dot += x * b[w]
		magA += x * x
	}
	for _, y := range b {
		magB += y * y
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// FindRelevant returns up to topK entries whose similarity to query beats the threshold.
func (s *ChatbotService) FindRelevant(query string, topK int) []KnowledgeEntry {
	type scored struct {
		score float64
		entry KnowledgeEntry
	}

	q := s.vector(query)
	results := make([]scored, 0, len(s.kb))
	for _, e := range s.kb {
		text := e.Content + " " + strings.Join(e.Keywords, " ")
		results = append(results, scored{score: cosine(q, s.vector(text)), entry: e})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].score > results[j].score })

	var relevant []KnowledgeEntry
	for i := 0; i < len(results) && i < topK; i++ {
		if results[i].score > chatMinSimilarity {
			relevant = append(relevant, results[i].entry)
		}
	}
	return relevant
}

func buildPrompt(query string, relevant []KnowledgeEntry, history []ChatTurn) string {
	var b strings.Builder
	b.WriteString(chatSystemPrompt)
	b.WriteString("\n\n")

	if len(relevant) > 0 {
		b.WriteString("Relevant Ayurvedic Knowledge:\n")
		for i, e := range relevant {
			fmt.Fprintf(&b, "%d. %s\n\n", i+1, e.Content)
		}
	}

	if len(history) > chatHistoryTurns {
		history = history[len(history)-chatHistoryTurns:]
	}
	if len(history) > 0 {
		b.WriteString("Previous conversation:\n")
		for _, turn := range history {
			role := turn.Role
			if role == "" {
				role = "user"
			}
			fmt.Fprintf(&b, "%s: %s\n", role, turn.Content)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "User question: %s\n\nPlease provide a helpful, authentic Ayurvedic response:", query)
	return b.String()
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Chat answers one message. It returns ErrChatbotUnavailable when no API key
// is configured and ErrChatbotUpstream when the model call fails.
func (s *ChatbotService) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if s.cfg.APIKey == "" {
		return nil, ErrChatbotUnavailable
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, fmt.Errorf("%w: message cannot be empty", ErrValidation)
	}

	relevant := s.FindRelevant(message, chatTopK)
	body := geminiRequest{Contents: []geminiContent{{
		Role:  "user",
		Parts: []geminiPart{{Text: buildPrompt(message, relevant, req.ConversationHistory)}},
	}}}

	var out geminiResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("key", s.cfg.APIKey).
		SetBody(body).
		SetResult(&out).
		Post(fmt.Sprintf("/models/%s:generateContent", s.cfg.Model))
	if err != nil {
		s.log.Error(err, "gemini request failed")
		return nil, fmt.Errorf("%w: %v", ErrChatbotUpstream, err)
	}
	if resp.IsError() {
		s.log.Warn("gemini returned an error", "status", resp.StatusCode(), "body", resp.String())
		return nil, fmt.Errorf("%w: status %d", ErrChatbotUpstream, resp.StatusCode())
	}

	var text strings.Builder
	if len(out.Candidates) > 0 {
		for _, p := range out.Candidates[0].Content.Parts {
			text.WriteString(p.Text)
		}
	}
	answer := strings.TrimSpace(text.String())
	if answer == "" {
		answer = "I apologize, but I'm having trouble processing your question right now. Please try rephrasing or ask about a specific Ayurvedic topic."
	}

	sources := make([]string, 0, len(relevant))
	seen := make(map[string]bool)
	for _, e := range relevant {
		if !seen[e.Source] {
			seen[e.Source] = true
			sources = append(sources, e.Source)
		}
	}
	return &ChatResponse{Response: answer, Sources: sources}, nil
}
