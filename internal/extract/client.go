package extract

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"cardscan/internal/apperr"
	"cardscan/internal/record"
	"cardscan/internal/schema"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	MsgNotConfigured = "AI extraction is not configured. Set the Gemini API key to enable it."
	MsgInvalidKey    = "The provided API key is invalid. Please check your configuration."
	MsgUnknown       = "An unknown error occurred while communicating with the AI service."
)

// Generator: срез genai.Models, который нам нужен.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Client struct {
	gen   Generator
	model string
	log   *zap.Logger
}

// New: пустой ключ не ошибка старта, Extract вернёт configuration error.
func New(ctx context.Context, apiKey, model string, log *zap.Logger) (*Client, error) {
	if model == "" {
		model = DefaultModel
	}
	if log == nil {
		log = zap.NewNop()
	}
	c := &Client{model: model, log: log}
	if strings.TrimSpace(apiKey) == "" {
		return c, nil
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, apperr.Configuration("extract", "Failed to create the AI client.", err)
	}
	c.gen = gc.Models
	return c, nil
}

// NewWithGenerator: для тестов и альтернативных бэкендов.
func NewWithGenerator(gen Generator, model string, log *zap.Logger) *Client {
	if model == "" {
		model = DefaultModel
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{gen: gen, model: model, log: log}
}

func (c *Client) Enabled() bool { return c != nil && c.gen != nil }

// Extract: снимок -> запись с ключами из cfg. Битый ответ модели не ошибка.
func (c *Client) Extract(ctx context.Context, image []byte, mime string, cfg schema.ColumnConfig) (record.Record, error) {
	if !c.Enabled() {
		return record.Record{}, apperr.Configuration("extract", MsgNotConfigured, nil)
	}
	if len(image) == 0 {
		return record.Record{}, apperr.Validation("image", "No image to analyze.", nil)
	}
	req := BuildRequest(image, mime, cfg)
	resp, err := c.gen.GenerateContent(ctx, c.model, req.Contents, req.Config)
	if err != nil {
		c.log.Warn("gemini request failed", zap.String("model", c.model), zap.Error(err))
		return record.Record{}, classify(err)
	}
	raw := ""
	if resp != nil {
		raw = resp.Text()
	}
	rec, perr := parse(raw)
	if perr != nil {
		c.log.Warn("gemini returned malformed JSON", zap.Int("len", len(raw)), zap.Error(apperr.Parse("extract", "malformed model output", perr)))
	}

	out := record.New(nil)
	for _, f := range cfg {
		if v, ok := rec.Fields[f.Key]; ok {
			out.Set(f.Key, v)
		}
	}
	c.log.Info("card extracted", zap.Int("fields", len(out.Fields)), zap.Int("configured", len(cfg)))
	return out, nil
}

func asAPIError(err error) (genai.APIError, bool) {
	var v genai.APIError
	if errors.As(err, &v) {
		return v, true
	}
	var p *genai.APIError
	if errors.As(err, &p) && p != nil {
		return *p, true
	}
	return genai.APIError{}, false
}

// classify: неверный ключ → configuration, прочие ответы сервиса → transport,
// остальное → unknown.
func classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return apperr.Transport("extract", "The AI request was interrupted.", err)
	}
	if ae, ok := asAPIError(err); ok {
		msg := ae.Message
		switch {
		case strings.Contains(msg, "API_KEY_INVALID"), strings.Contains(strings.ToLower(msg), "api key not valid"),
			ae.Code == http.StatusUnauthorized, ae.Code == http.StatusForbidden:
			return apperr.Configuration("extract", MsgInvalidKey, err)
		}
		return apperr.Transport("extract", "An API error occurred: "+msg, err)
	}
	if strings.Contains(err.Error(), "API_KEY_INVALID") {
		return apperr.Configuration("extract", MsgInvalidKey, err)
	}
	return apperr.Unknown("extract", MsgUnknown, err)
}
