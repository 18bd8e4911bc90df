package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

type Config struct {
	Port        string `json:"port" validate:"required,numeric"`
	Store       string `json:"store" validate:"oneof=local pg"` // local (sqlite-файл) | pg
	LocalPath   string `json:"localPath" validate:"required_if=Store local"`
	DBURL       string `json:"dbUrl" validate:"required_if=Store pg"`
	AutoMigrate bool   `json:"autoMigrate"`

	// YAML со стартовым набором колонок; пусто: встроенный
	ColumnsFile string `json:"columnsFile"`

	// Снимки визиток для повторного анализа
	CapturesRoot string `json:"capturesRoot" validate:"required"`

	// Gemini; пустой ключ: распознавание выключено
	GeminiAPIKey string `json:"geminiApiKey"`
	GeminiModel  string `json:"geminiModel" validate:"required"`

	// Google Sheets (сервисный аккаунт); пусто: экспорт выключен
	SheetsCredentialsFile string `json:"sheetsCredentialsFile"`
	SheetsName            string `json:"sheetsName" validate:"required"`
	SheetsTab             string `json:"sheetsTab" validate:"required"`

	LogLevel string `json:"logLevel" validate:"omitempty,oneof=debug info warn error"`
	LogFile  string `json:"logFile"`

	// Шапка и подвал печатных документов, строки через "|"
	Letterhead  string `json:"letterhead"`
	Footer      string `json:"footer"`
	Placeholder string `json:"placeholder"`
}

func def() Config {
	return Config{
		Port:        "8080",
		Store:       "local",
		LocalPath:   "data/cardscan.db",
		DBURL:       "",
		AutoMigrate: false,

		ColumnsFile:  "",
		CapturesRoot: "captures",

		GeminiAPIKey: "",
		GeminiModel:  "gemini-2.5-flash",

		SheetsCredentialsFile: "",
		SheetsName:            "Visual Text Extractor Contacts",
		SheetsTab:             "Contacts",

		LogLevel: "info",
		LogFile:  "",

		Letterhead:  "Contact Details",
		Footer:      "Thank you for using our services!",
		Placeholder: "N/A",
	}
}

// Default: значения по умолчанию (для флагов и тестов).
func Default() Config { return def() }

func loadJSON(path string, c Config) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := json.Unmarshal(b, &c); err != nil {
		return c, err
	}
	return c, nil
}

func getenv(k, fallback string) string {
	if v, ok := os.LookupEnv(k); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}
func getenvBool(k string, fallback bool) bool {
	if v, ok := os.LookupEnv(k); ok {
		v = strings.TrimSpace(strings.ToLower(v))
		if v == "1" || v == "true" || v == "yes" {
			return true
		}
		if v == "0" || v == "false" || v == "no" {
			return false
		}
	}
	return fallback
}

// BindFlags регистрирует флаги; значения применяются в Load, только если флаг задан явно.
func BindFlags(fs *pflag.FlagSet) {
	d := def()
	fs.String("config", "cardscan.json", "Path to config JSON")
	fs.String("env-file", ".env", "Path to .env file")
	fs.String("port", d.Port, "HTTP port")
	fs.String("store", d.Store, "Record store (local/pg)")
	fs.String("local-path", d.LocalPath, "SQLite file for the local store and settings")
	fs.String("db", d.DBURL, "Postgres URL (store=pg)")
	fs.Bool("auto-migrate", d.AutoMigrate, "Auto-migrate add-only")
	fs.String("columns", d.ColumnsFile, "YAML file with the default columns")
	fs.String("captures-root", d.CapturesRoot, "Directory for uploaded card photos")
	fs.String("gemini-model", d.GeminiModel, "Gemini model")
	fs.String("sheets-credentials", d.SheetsCredentialsFile, "Google service account JSON")
	fs.String("sheets-name", d.SheetsName, "Spreadsheet name")
	fs.String("sheets-tab", d.SheetsTab, "Sheet (tab) name")
	fs.String("log-level", d.LogLevel, "Log level (debug/info/warn/error)")
	fs.String("log-file", d.LogFile, "Log file (rotated); empty = stdout only")
	fs.String("placeholder", d.Placeholder, "Placeholder for empty table cells")
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load: defaults → JSON (если есть) → .env + ENV → явно заданные флаги → проверка.
func Load(fs *pflag.FlagSet) (Config, error) {
	jsonPath := "cardscan.json"
	envFile := ".env"
	if fs != nil {
		if v, err := fs.GetString("config"); err == nil {
			jsonPath = v
		}
		if v, err := fs.GetString("env-file"); err == nil {
			envFile = v
		}
	}

	cfg := def()

	// JSON (если файл существует)
	if st, err := os.Stat(jsonPath); err == nil && !st.IsDir() {
		c2, err := loadJSON(jsonPath, cfg)
		if err != nil {
			return cfg, fmt.Errorf("config: %s: %w", jsonPath, err)
		}
		cfg = c2
	}

	// .env не перетирает уже заданные переменные окружения
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("config: %s: %w", envFile, err)
		}
	}

	// ENV overrides
	cfg.Port = getenv("CARDSCAN_PORT", cfg.Port)
	cfg.Store = getenv("CARDSCAN_STORE", cfg.Store)
	cfg.LocalPath = getenv("CARDSCAN_LOCAL_PATH", cfg.LocalPath)
	cfg.DBURL = getenv("CARDSCAN_DB_URL", cfg.DBURL)
	cfg.AutoMigrate = getenvBool("CARDSCAN_AUTO_MIGRATE", cfg.AutoMigrate)
	cfg.ColumnsFile = getenv("CARDSCAN_COLUMNS_FILE", cfg.ColumnsFile)
	cfg.CapturesRoot = getenv("CARDSCAN_CAPTURES_ROOT", cfg.CapturesRoot)
	cfg.GeminiAPIKey = getenv("CARDSCAN_GEMINI_API_KEY", getenv("GEMINI_API_KEY", cfg.GeminiAPIKey))
	cfg.GeminiModel = getenv("CARDSCAN_GEMINI_MODEL", cfg.GeminiModel)
	cfg.SheetsCredentialsFile = getenv("CARDSCAN_SHEETS_CREDENTIALS", cfg.SheetsCredentialsFile)
	cfg.SheetsName = getenv("CARDSCAN_SHEETS_NAME", cfg.SheetsName)
	cfg.SheetsTab = getenv("CARDSCAN_SHEETS_TAB", cfg.SheetsTab)
	cfg.LogLevel = getenv("CARDSCAN_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFile = getenv("CARDSCAN_LOG_FILE", cfg.LogFile)
	cfg.Letterhead = getenv("CARDSCAN_LETTERHEAD", cfg.Letterhead)
	cfg.Footer = getenv("CARDSCAN_FOOTER", cfg.Footer)
	cfg.Placeholder = getenv("CARDSCAN_PLACEHOLDER", cfg.Placeholder)

	// Flags overrides
	if fs != nil {
		str := func(name string, dst *string) {
			if fs.Changed(name) {
				v, _ := fs.GetString(name)
				*dst = strings.TrimSpace(v)
			}
		}
		str("port", &cfg.Port)
		str("store", &cfg.Store)
		str("local-path", &cfg.LocalPath)
		str("db", &cfg.DBURL)
		str("columns", &cfg.ColumnsFile)
		str("captures-root", &cfg.CapturesRoot)
		str("gemini-model", &cfg.GeminiModel)
		str("sheets-credentials", &cfg.SheetsCredentialsFile)
		str("sheets-name", &cfg.SheetsName)
		str("sheets-tab", &cfg.SheetsTab)
		str("log-level", &cfg.LogLevel)
		str("log-file", &cfg.LogFile)
		str("placeholder", &cfg.Placeholder)
		if fs.Changed("auto-migrate") {
			cfg.AutoMigrate, _ = fs.GetBool("auto-migrate")
		}
	}

	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if err := validate.Struct(cfg); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Lines режет "a|b|c" на строки шапки/подвала.
func Lines(s string) []string {
	var out []string
	for _, l := range strings.Split(s, "|") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
