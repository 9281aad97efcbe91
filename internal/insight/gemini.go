package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"finboard/internal/core"
	"finboard/internal/log"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"google.golang.org/genai"
)

var _ Advisor = (*Gemini)(nil)

type GeminiConfig struct {
	APIKey     string
	Model      string
	MaxRetries int
	// Timeout bounds a single HTTP attempt; callers bound the whole call with ctx.
	Timeout time.Duration
}

// Gemini implements Advisor on the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
	logger *log.Logger
}

func NewGemini(ctx context.Context, cfg GeminiConfig, logger *log.Logger) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: API key is required")
	}

	logger = logger.WithComponent(log.ComponentInsight)

	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.MaxRetries
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.HTTPClient.Timeout = cfg.Timeout
	rc.Logger = &retryLogger{logger: logger}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: rc.StandardClient(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "gemini: create client")
	}

	return &Gemini{client: client, model: cfg.Model, logger: logger}, nil
}

func (g *Gemini) generate(ctx context.Context, prompt, mimeType string) (string, error) {
	temperature := float32(0.2)
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:      &temperature,
		ResponseMIMEType: mimeType,
	})
	if err != nil {
		return "", errors.Wrapf(err, "gemini: generate content with %s", g.model)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", errors.New("gemini: empty response")
	}
	return text, nil
}

type txView struct {
	Date        string          `json:"date"`
	Type        core.TxType     `json:"type"`
	Category    core.Category   `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
}

type modelInsight struct {
	Type        string              `json:"type"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Actionable  bool                `json:"actionable"`
	Action      *core.InsightAction `json:"action"`
	Priority    string              `json:"priority"`
	DataPoints  map[string]any      `json:"dataPoints"`
}

func (g *Gemini) Analyze(ctx context.Context, txs []core.Transaction, budgets []BudgetSnapshot) ([]core.Insight, error) {
	views := make([]txView, len(txs))
	for i, t := range txs {
		views[i] = txView{
			Date:        t.Date.Format(time.DateOnly),
			Type:        t.Type,
			Category:    t.Category,
			Amount:      t.Amount,
			Description: t.Description,
		}
	}
	txJSON, err := json.Marshal(views)
	if err != nil {
		return nil, fmt.Errorf("encode transactions: %w", err)
	}
	budgetJSON, err := json.Marshal(budgets)
	if err != nil {
		return nil, fmt.Errorf("encode budgets: %w", err)
	}

	prompt := "You are a financial advisor. Analyze these transactions and budgets.\n\n" +
		"Transactions: " + string(txJSON) + "\n" +
		"Budgets: " + string(budgetJSON) + "\n\n" +
		"Provide 2-3 actionable insights about spending patterns and anomalies, budget adherence " +
		"and opportunities to save.\n" +
		"Return ONLY a JSON array of objects with fields " +
		`"type" (WARNING|SUGGESTION|CELEBRATION|FORECAST), "title", "description", ` +
		`"actionable" (boolean), "priority" (HIGH|MEDIUM|LOW).` + "\n" +
		"Do NOT wrap the response in code fences."

	raw, err := g.generate(ctx, prompt, "application/json")
	if err != nil {
		return nil, err
	}

	var parsed []modelInsight
	if err := json.Unmarshal([]byte(cleanModelJSON(raw, '[', ']')), &parsed); err != nil {
		return nil, errors.Wrap(err, "gemini: decode insights")
	}
	return normalizeInsights(parsed), nil
}

// normalizeInsights upper-cases enums, drops entries that are still invalid
// and keeps at most MaxInsights.
func normalizeInsights(in []modelInsight) []core.Insight {
	out := make([]core.Insight, 0, len(in))
	for _, m := range in {
		ins := core.Insight{
			Type:        core.InsightType(strings.ToUpper(strings.TrimSpace(m.Type))),
			Title:       strings.TrimSpace(m.Title),
			Description: strings.TrimSpace(m.Description),
			Actionable:  m.Actionable,
			Action:      m.Action,
			Priority:    core.Priority(strings.ToUpper(strings.TrimSpace(m.Priority))),
			DataPoints:  m.DataPoints,
		}
		if !ins.Valid() {
			continue
		}
		out = append(out, ins)
		if len(out) == MaxInsights {
			break
		}
	}
	return out
}

func (g *Gemini) SafeToSpend(ctx context.Context, balance decimal.Decimal, upcoming []UpcomingExpense, goal decimal.Decimal) (core.SafeToSpend, error) {
	upcomingJSON, err := json.Marshal(upcoming)
	if err != nil {
		return core.SafeToSpend{}, fmt.Errorf("encode upcoming expenses: %w", err)
	}

	prompt := "Calculate how much money is safe to spend.\n\n" +
		"Current balance: " + balance.StringFixed(2) + "\n" +
		"Upcoming expenses: " + string(upcomingJSON) + "\n" +
		"Savings goal still to fund: " + goal.StringFixed(2) + "\n\n" +
		`Return ONLY a JSON object {"amount": number, "explanation": string}.`

	raw, err := g.generate(ctx, prompt, "application/json")
	if err != nil {
		return core.SafeToSpend{}, err
	}

	var parsed struct {
		Amount      json.Number `json:"amount"`
		Explanation string      `json:"explanation"`
	}
	if err := json.Unmarshal([]byte(cleanModelJSON(raw, '{', '}')), &parsed); err != nil {
		return core.SafeToSpend{}, errors.Wrap(err, "gemini: decode safe-to-spend")
	}
	amount, err := decimal.NewFromString(parsed.Amount.String())
	if err != nil {
		return core.SafeToSpend{}, errors.Wrapf(err, "gemini: amount %q", parsed.Amount)
	}
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	if strings.TrimSpace(parsed.Explanation) == "" {
		return core.SafeToSpend{}, errors.New("gemini: missing explanation")
	}
	return core.SafeToSpend{Amount: core.RoundAmount(amount), Explanation: parsed.Explanation}, nil
}

func (g *Gemini) Categorize(ctx context.Context, description string) (core.Category, error) {
	var names strings.Builder
	for _, info := range core.Categories() {
		fmt.Fprintf(&names, "- %s (%s)\n", info.Category, info.Label)
	}

	prompt := "Categorize this transaction: " + strconv.Quote(description) + "\n\n" +
		"Available categories:\n" + names.String() + "\n" +
		"Return ONLY the category name, nothing else."

	raw, err := g.generate(ctx, prompt, "text/plain")
	if err != nil {
		return "", err
	}
	cat, err := core.ParseCategory(strings.Trim(strings.TrimSpace(raw), "`\"'."))
	if err != nil {
		return "", errors.Wrapf(err, "gemini: unusable category %q", raw)
	}
	return cat, nil
}

// retryLogger adapts the application logger to retryablehttp.LeveledLogger.
type retryLogger struct {
	logger *log.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...any) { l.logger.Error(msg, keysAndValues...) }
func (l *retryLogger) Info(msg string, keysAndValues ...any)  { l.logger.Debug(msg, keysAndValues...) }
func (l *retryLogger) Debug(msg string, keysAndValues ...any) { l.logger.Debug(msg, keysAndValues...) }
func (l *retryLogger) Warn(msg string, keysAndValues ...any)  { l.logger.Warn(msg, keysAndValues...) }
