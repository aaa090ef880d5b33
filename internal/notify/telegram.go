package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"olxradar/internal/domain"
)

const (
	defaultTelegramBaseURL = "https://api.telegram.org"
	defaultTelegramLimit   = 4096
)

// TelegramTransport delivers each chunk as an independent message in the
// configured chat. Chunk 0 carries the subject line; the Bot API's own
// message-length ceiling is enforced here as a final safety net in case the
// batcher's bound is ever misconfigured.
type TelegramTransport struct {
	baseURL   string
	token     string
	chatID    string
	hardLimit int
	client    *http.Client
}

type TelegramOptions struct {
	BotToken  string
	ChatID    string
	HardLimit int           // defaults to the Bot API's 4096
	BaseURL   string        // defaults to the public Bot API, overridable for tests
	Timeout   time.Duration // per-message request timeout
}

func NewTelegramTransport(opts TelegramOptions) *TelegramTransport {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = defaultTelegramBaseURL
	}
	limit := opts.HardLimit
	if limit <= 0 {
		limit = defaultTelegramLimit
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &TelegramTransport{
		baseURL:   base,
		token:     opts.BotToken,
		chatID:    opts.ChatID,
		hardLimit: limit,
		client:    &http.Client{Timeout: timeout},
	}
}

func (t *TelegramTransport) Name() string { return "telegram" }

// Send delivers the payload chunk by chunk, in order. The subject line plus
// a blank line prefixes the first chunk only; later chunks stand alone in
// the conversation thread.
func (t *TelegramTransport) Send(ctx context.Context, payload domain.NotificationPayload) error {
	for i, chunk := range payload.Chunks {
		text := chunk
		if i == 0 {
			text = payload.Subject + "\n\n" + chunk
		}
		if err := t.sendMessage(ctx, truncateAt(text, t.hardLimit)); err != nil {
			return fmt.Errorf("chunk %d of %d: %w", i+1, len(payload.Chunks), err)
		}
	}
	return nil
}

// truncateAt cuts s to at most limit bytes without splitting a rune. Listing
// URLs are not ASCII-folded, so the ceiling can land inside a multi-byte
// character.
func truncateAt(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func (t *TelegramTransport) sendMessage(ctx context.Context, text string) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)
	params := url.Values{}
	params.Set("chat_id", t.chatID)
	params.Set("text", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}

	var reply struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return fmt.Errorf("decode telegram response: %w", err)
	}
	if !reply.OK {
		return fmt.Errorf("telegram rejected message: %s", reply.Description)
	}
	return nil
}
