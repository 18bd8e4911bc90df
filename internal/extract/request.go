// Package extract: разбор фотографии визитки через Gemini по схеме из ColumnConfig.
package extract

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"cardscan/internal/record"
	"cardscan/internal/schema"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash"

// DefaultMIME: так камера отдаёт снимок.
const DefaultMIME = "image/jpeg"

// Request: всё, что уходит в Models.GenerateContent.
type Request struct {
	Prompt   string
	Contents []*genai.Content
	Config   *genai.GenerateContentConfig
}

// Prompt перечисляет подписи всех полей.
func Prompt(cfg schema.ColumnConfig) string {
	headers := make([]string, 0, len(cfg))
	for _, f := range cfg {
		headers = append(headers, f.Header)
	}
	return fmt.Sprintf("Analyze the image to find contact information. Extract the following fields: %s. "+
		"If a field is not present, it should be omitted from the JSON output.", strings.Join(headers, ", "))
}

// ResponseSchema: по одному строковому свойству на каждое поле конфигурации,
// включая скрытые.
func ResponseSchema(cfg schema.ColumnConfig) *genai.Schema {
	s := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: make(map[string]*genai.Schema, len(cfg)),
	}
	for _, f := range cfg {
		s.Properties[f.Key] = &genai.Schema{
			Type:        genai.TypeString,
			Description: fmt.Sprintf("The %s.", f.Header),
		}
		s.PropertyOrdering = append(s.PropertyOrdering, f.Key)
	}
	return s
}

func BuildRequest(image []byte, mime string, cfg schema.ColumnConfig) Request {
	if mime == "" {
		mime = DefaultMIME
	}
	prompt := Prompt(cfg)
	parts := []*genai.Part{
		genai.NewPartFromBytes(image, mime),
		genai.NewPartFromText(prompt),
	}
	return Request{
		Prompt:   prompt,
		Contents: []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		Config: &genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   ResponseSchema(cfg),
		},
	}
}

// ParseResponse никогда не падает: пустой или битый ответ даёт пустую запись,
// пользователь заполнит форму вручную.
func ParseResponse(raw string) record.Record {
	rec, _ := parse(raw)
	return rec
}

func parse(raw string) (record.Record, error) {
	s := stripFences(strings.TrimSpace(raw))
	if s == "" {
		return record.New(nil), nil
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return record.New(nil), err
	}
	rec := record.New(nil)
	for k, v := range obj {
		switch t := v.(type) {
		case string:
			rec.Set(k, t)
		case float64:
			rec.Set(k, strconv.FormatFloat(t, 'f', -1, 64))
		case bool:
			rec.Set(k, strconv.FormatBool(t))
		}
	}
	return rec, nil
}

// stripFences: ```json ... ``` -> содержимое.
func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
