package pg

import (
	"fmt"
	"strings"
	"unicode"

	"cardscan/internal/apperr"
	"cardscan/internal/schema"
)

// Table: единственная логическая таблица хостингового бэкенда.
const Table = "contacts"

// системные колонки
const (
	colID        = "id"
	colShortID   = "six_digit_id"
	colCreatedAt = "created_at"
)

var systemCols = map[string]struct{}{colID: {}, colShortID: {}, colCreatedAt: {}}

// ColumnName: ключ поля → имя колонки. camelCase → snake_case,
// всё кроме [a-z0-9_] → "_": "dateAdded" -> "date_added", "e-mail" -> "e_mail".
func ColumnName(key string) string {
	var b strings.Builder
	rs := []rune(strings.TrimSpace(key))
	for i, r := range rs {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(rs[i-1]) || unicode.IsDigit(rs[i-1])) {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// sqlIdent: кавычки спасают от ключевых слов ("order", "user", ...)
func sqlIdent(s string) string { return `"` + strings.ReplaceAll(s, `"`, `""`) + `"` }

// columnMap: ключ → колонка для всех полей конфигурации, кроме короткого id
// (он живёт в системной колонке).
func columnMap(cfg schema.ColumnConfig) (map[string]string, error) {
	out := make(map[string]string, len(cfg))
	owner := make(map[string]string, len(cfg))
	for _, f := range cfg {
		if f.Key == schema.KeyShortID {
			continue
		}
		col := ColumnName(f.Key)
		if strings.Trim(col, "_") == "" {
			return nil, apperr.Validation(f.Key, fmt.Sprintf("Field key %q cannot be stored as a column.", f.Key), schema.ErrDuplicateKey)
		}
		if _, sys := systemCols[col]; sys {
			return nil, apperr.Validation(f.Key, fmt.Sprintf("Field key %q clashes with system column %q.", f.Key, col), schema.ErrReservedField)
		}
		if prev, dup := owner[col]; dup {
			return nil, apperr.Validation(f.Key,
				fmt.Sprintf("Fields %q and %q map to the same column %q.", prev, f.Key, col), schema.ErrDuplicateKey)
		}
		owner[col] = f.Key
		out[f.Key] = col
	}
	return out, nil
}

// CheckConfig: можно ли хранить такую конфигурацию в таблице.
func CheckConfig(cfg schema.ColumnConfig) error {
	_, err := columnMap(cfg)
	return err
}

// GenerateDDL возвращает карту порядок -> SQL. Миграция только добавляет:
// колонки удалённых полей остаются в таблице вместе с данными.
func GenerateDDL(cfg schema.ColumnConfig) (map[string]string, error) {
	cols, err := columnMap(cfg)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, 3)

	// --- Phase A: таблица с системными колонками ---
	out["000_table"] = fmt.Sprintf(`create table if not exists %s (
  %s text primary key,
  %s integer,
  %s timestamp with time zone not null default now()
);`, sqlIdent(Table), sqlIdent(colID), sqlIdent(colShortID), sqlIdent(colCreatedAt))

	// --- Phase B: пользовательские поля в порядке конфигурации ---
	var sb strings.Builder
	for _, f := range cfg {
		col, ok := cols[f.Key]
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "alter table %s add column if not exists %s text;\n", sqlIdent(Table), sqlIdent(col))
	}
	out["100_columns"] = sb.String()

	// --- Phase C: индексы ---
	idx := fmt.Sprintf("create unique index if not exists %s on %s(%s);\n",
		sqlIdent(Table+"_six_digit_id_uq"), sqlIdent(Table), sqlIdent(colShortID))
	if dc, ok := cols[schema.KeyDateAdded]; ok {
		idx += fmt.Sprintf("create index if not exists %s on %s(%s desc);\n",
			sqlIdent(Table+"_date_added_idx"), sqlIdent(Table), sqlIdent(dc))
	}
	out["200_indexes"] = idx
	return out, nil
}
