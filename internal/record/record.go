package record

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"cardscan/internal/schema"
)

// Служебные ключи плоского JSON-представления записи.
const (
	KeyID      = "id"
	KeyShortID = schema.KeyShortID
)

// Record описывает одну визитку, динамический набор полей по ключам ColumnConfig.
// Отсутствующее поле: просто нет ключа в Fields (null не храним).
type Record struct {
	ID      string
	ShortID int // 0 = ещё не назначен
	Fields  map[string]string
}

func New(fields map[string]string) Record {
	r := Record{Fields: make(map[string]string, len(fields))}
	for k, v := range fields {
		r.Set(k, v)
	}
	return r
}

// Value: для six_digit_id отдаёт короткий id, для остального значение поля.
func (r Record) Value(key string) (string, bool) {
	switch key {
	case KeyShortID:
		if r.ShortID == 0 {
			return "", false
		}
		return strconv.Itoa(r.ShortID), true
	case KeyID:
		return r.ID, r.ID != ""
	}
	v, ok := r.Fields[key]
	return v, ok
}

// Set игнорирует служебные ключи: id и короткий id назначает хранилище.
func (r *Record) Set(key, value string) {
	if key == KeyID || key == KeyShortID || key == "" {
		return
	}
	if r.Fields == nil {
		r.Fields = map[string]string{}
	}
	r.Fields[key] = value
}

// IsBlank: нет ни одного непустого пользовательского поля (дата не в счёт).
func (r Record) IsBlank() bool {
	for k, v := range r.Fields {
		if k == schema.KeyDateAdded {
			continue
		}
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func (r Record) Clone() Record {
	out := Record{ID: r.ID, ShortID: r.ShortID, Fields: make(map[string]string, len(r.Fields))}
	for k, v := range r.Fields {
		out.Fields[k] = v
	}
	return out
}

// Merge накладывает edited поверх копии записи (пустые строки тоже записываются).
func (r Record) Merge(edited map[string]string) Record {
	out := r.Clone()
	for k, v := range edited {
		out.Set(k, v)
	}
	return out
}

// Keys: ключи полей в стабильном порядке (для логов и тестов).
func (r Record) Keys() []string {
	out := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON: плоский объект {"id":..., "six_digit_id":..., "<key>": "..."}.
func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Fields)+2)
	for k, v := range r.Fields {
		out[k] = v
	}
	if r.ID != "" {
		out[KeyID] = r.ID
	}
	if r.ShortID != 0 {
		out[KeyShortID] = r.ShortID
	}
	return json.Marshal(out)
}

func (r *Record) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*r = Record{Fields: make(map[string]string, len(raw))}
	for k, v := range raw {
		switch k {
		case KeyID:
			r.ID = toString(v)
		case KeyShortID:
			n, err := toInt(v)
			if err != nil {
				return fmt.Errorf("record: %s: %w", KeyShortID, err)
			}
			r.ShortID = n
		default:
			if v == nil {
				continue
			}
			r.Fields[k] = toString(v)
		}
	}
	return nil
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func toInt(v any) (int, error) {
	switch t := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return int(t), nil
	case string:
		if strings.TrimSpace(t) == "" {
			return 0, nil
		}
		return strconv.Atoi(strings.TrimSpace(t))
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}
