package schema

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"cardscan/internal/apperr"
)

var (
	ErrReservedField = errors.New("reserved field")
	ErrEmptyHeader   = errors.New("empty header")
	ErrDuplicateKey  = errors.New("duplicate key")
	ErrUnknownField  = errors.New("unknown field")
	ErrMissingCore   = errors.New("missing reserved field")
)

var wsRe = regexp.MustCompile(`\s+`)

// идентификатор записи в хранилище; полем быть не может
const keyRecordID = "id"

// DeriveKey: "  Job  Title " -> "job_title"
func DeriveKey(header string) string {
	return wsRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(header)), "_")
}

func (c ColumnConfig) Clone() ColumnConfig {
	if c == nil {
		return nil
	}
	out := make(ColumnConfig, len(c))
	copy(out, c)
	return out
}

func (c ColumnConfig) index(key string) int {
	for i, f := range c {
		if f.Key == key {
			return i
		}
	}
	return -1
}

func (c ColumnConfig) Has(key string) bool { return c.index(key) >= 0 }

func (c ColumnConfig) Field(key string) (FieldDefinition, bool) {
	if i := c.index(key); i >= 0 {
		return c[i], true
	}
	return FieldDefinition{}, false
}

func (c ColumnConfig) Keys() []string {
	out := make([]string, 0, len(c))
	for _, f := range c {
		out = append(out, f.Key)
	}
	return out
}

// Visible: единственный фильтр колонок для таблицы, печати и выгрузки.
func (c ColumnConfig) Visible() ColumnConfig {
	out := make(ColumnConfig, 0, len(c))
	for _, f := range c {
		if f.Visible {
			out = append(out, f)
		}
	}
	return out
}

// FormFields: всё, кроме служебных полей (дата, короткий id).
func (c ColumnConfig) FormFields() ColumnConfig {
	out := make(ColumnConfig, 0, len(c))
	for _, f := range c {
		if IsSystemManaged(f.Key) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Relabel меняет только header; пустая строка допустима.
func (c ColumnConfig) Relabel(key, header string) (ColumnConfig, error) {
	i := c.index(key)
	if i < 0 {
		return c, apperr.Validation(key, fmt.Sprintf("Field %q does not exist.", key), ErrUnknownField)
	}
	out := c.Clone()
	out[i].Header = header
	return out, nil
}

// SetVisible без ограничений: можно скрыть вообще всё.
func (c ColumnConfig) SetVisible(key string, visible bool) (ColumnConfig, error) {
	i := c.index(key)
	if i < 0 {
		return c, apperr.Validation(key, fmt.Sprintf("Field %q does not exist.", key), ErrUnknownField)
	}
	out := c.Clone()
	out[i].Visible = visible
	return out, nil
}

// Remove убирает поле из конфигурации. Значения в уже сохранённых записях не трогаем:
// при повторном добавлении того же ключа они снова видны.
func (c ColumnConfig) Remove(key string) (ColumnConfig, error) {
	i := c.index(key)
	if IsReserved(key) {
		header := key
		if i >= 0 {
			header = c[i].Header
		}
		return c, apperr.Validation(key, fmt.Sprintf("The %q field is essential and cannot be deleted.", header), ErrReservedField)
	}
	if i < 0 {
		return c, apperr.Validation(key, fmt.Sprintf("Field %q does not exist.", key), ErrUnknownField)
	}
	out := make(ColumnConfig, 0, len(c)-1)
	out = append(out, c[:i]...)
	out = append(out, c[i+1:]...)
	return out, nil
}

// Add выводит ключ из подписи и добавляет видимое поле в конец.
func (c ColumnConfig) Add(header string) (ColumnConfig, FieldDefinition, error) {
	trimmed := strings.TrimSpace(header)
	if trimmed == "" {
		return c, FieldDefinition{}, apperr.Validation("", "Field name cannot be empty.", ErrEmptyHeader)
	}
	key := DeriveKey(trimmed)
	if key == keyRecordID || IsSystemManaged(key) {
		return c, FieldDefinition{}, apperr.Validation(key, fmt.Sprintf("The key %q is used by the system.", key), ErrReservedField)
	}
	if c.Has(key) {
		return c, FieldDefinition{}, apperr.Validation(key,
			fmt.Sprintf("A field with the key %q already exists. Please choose a different name.", key), ErrDuplicateKey)
	}
	f := FieldDefinition{Key: key, Header: trimmed, Visible: true}
	out := make(ColumnConfig, 0, len(c)+1)
	out = append(out, c...)
	out = append(out, f)
	return out, f, nil
}

// Validate проверяет конфигурацию целиком (сохранение всего списка из настроек).
func (c ColumnConfig) Validate() error {
	seen := make(map[string]struct{}, len(c))
	for _, f := range c {
		if strings.TrimSpace(f.Key) == "" {
			return apperr.Validation("", "Field key cannot be empty.", ErrEmptyHeader)
		}
		if f.Key == keyRecordID {
			return apperr.Validation(f.Key, fmt.Sprintf("The key %q is used by the system.", f.Key), ErrReservedField)
		}
		if _, dup := seen[f.Key]; dup {
			return apperr.Validation(f.Key, fmt.Sprintf("Duplicate field key %q.", f.Key), ErrDuplicateKey)
		}
		seen[f.Key] = struct{}{}
	}
	for _, k := range Reserved {
		if _, ok := seen[k]; !ok {
			return apperr.Validation(k, fmt.Sprintf("The %q field is essential and cannot be deleted.", k), ErrMissingCore)
		}
	}
	return nil
}
