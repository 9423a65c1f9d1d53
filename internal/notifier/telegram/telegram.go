package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/newthinker/tickervista/internal/notifier"
)

const defaultBaseURL = "https://api.telegram.org"

// maxListedFailures caps the failed symbols spelled out in one message
const maxListedFailures = 10

// Telegram sends run summaries through the Telegram Bot API
type Telegram struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
}

// New creates a new Telegram notifier
func New(botToken, chatID string) *Telegram {
	return &Telegram{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  defaultBaseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (t *Telegram) Name() string {
	return "telegram"
}

func (t *Telegram) Init(cfg notifier.Config) error {
	if token, ok := cfg.Params["bot_token"].(string); ok {
		t.botToken = token
	}
	if chatID, ok := cfg.Params["chat_id"].(string); ok {
		t.chatID = chatID
	}
	if baseURL, ok := cfg.Params["base_url"].(string); ok && baseURL != "" {
		t.baseURL = baseURL
	}

	if t.botToken == "" {
		return fmt.Errorf("telegram: bot_token is required")
	}
	if t.chatID == "" {
		return fmt.Errorf("telegram: chat_id is required")
	}
	if t.baseURL == "" {
		t.baseURL = defaultBaseURL
	}
	if t.client == nil {
		t.client = &http.Client{Timeout: 30 * time.Second}
	}

	return nil
}

func (t *Telegram) Notify(ctx context.Context, summary notifier.RunSummary) error {
	return t.sendMessage(ctx, formatSummary(summary))
}

func formatSummary(s notifier.RunSummary) string {
	var sb strings.Builder

	emoji := "✅"
	if s.Status != "success" {
		emoji = "⚠️"
	}

	sb.WriteString(fmt.Sprintf("%s *TickerVista refresh* - %s\n", emoji, s.Status))
	sb.WriteString(fmt.Sprintf("📅 As of: %s\n", s.AsOf.UTC().Format("2006-01-02 15:04")))
	sb.WriteString(fmt.Sprintf("📊 Symbols: %d", s.Symbols))
	if len(s.Failed) > 0 {
		sb.WriteString(fmt.Sprintf(" (%d skipped)", len(s.Failed)))
	}
	sb.WriteString("\n")

	if len(s.Lights) > 0 {
		lights := make([]string, 0, len(s.Lights))
		for light := range s.Lights {
			lights = append(lights, light)
		}
		sort.Strings(lights)
		parts := make([]string, len(lights))
		for i, light := range lights {
			parts[i] = fmt.Sprintf("%s %d", light, s.Lights[light])
		}
		sb.WriteString(fmt.Sprintf("🚦 %s\n", strings.Join(parts, " / ")))
	}

	if len(s.Failed) > 0 {
		listed := s.Failed[:min(len(s.Failed), maxListedFailures)]
		sb.WriteString(fmt.Sprintf("❌ Skipped: %s", strings.Join(listed, ", ")))
		if len(s.Failed) > maxListedFailures {
			sb.WriteString(fmt.Sprintf(" and %d more", len(s.Failed)-maxListedFailures))
		}
		sb.WriteString("\n")
	}

	if s.Error != "" {
		sb.WriteString(fmt.Sprintf("💥 Error: %s\n", s.Error))
	}

	sb.WriteString(fmt.Sprintf("⏱️ Took: %s", s.Duration.Round(time.Millisecond)))

	return sb.String()
}

func (t *Telegram) sendMessage(ctx context.Context, text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.botToken)

	payload := map[string]any{
		"chat_id":    t.chatID,
		"text":       text,
		"parse_mode": "Markdown",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("telegram: failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: failed to send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var result map[string]any
		json.NewDecoder(resp.Body).Decode(&result)
		return fmt.Errorf("telegram: API error (status %d): %v", resp.StatusCode, result)
	}

	return nil
}
