// Package capture хранит присланные снимки визиток, чтобы повторить анализ
// того же снимка без повторной загрузки.
package capture

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"cardscan/internal/apperr"
)

// MaxSize: ограничение на один снимок.
const MaxSize = 10 << 20

var ErrTooLarge = errors.New("image too large")

// Capture: метаданные сохранённого снимка.
type Capture struct {
	Key    string `json:"key"`
	Size   int64  `json:"size"`
	SHA256 string `json:"sha256"`
	MIME   string `json:"mime"`
}

type Store interface {
	Put(r io.Reader, mimeType string) (Capture, error)
	Open(key string) ([]byte, string, error) // байты и MIME
	Delete(key string) error
}

type LocalStore struct {
	Root string // например, "./captures"
	now  func() time.Time
}

func NewLocal(root string) *LocalStore { return &LocalStore{Root: root, now: time.Now} }

var extByMIME = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/heic": ".heic",
}

// Allowed: поддерживаемый тип снимка.
func Allowed(mimeType string) bool {
	_, ok := extByMIME[normalizeMIME(mimeType)]
	return ok
}

func normalizeMIME(m string) string {
	if mt, _, err := mime.ParseMediaType(m); err == nil {
		return mt
	}
	return strings.ToLower(strings.TrimSpace(m))
}

// ключ: 202405_<32 hex>.jpg; файл лежит в Root/202405/
var keyRe = regexp.MustCompile(`^(\d{6})_[0-9a-f]{32}\.(jpg|png|webp|heic)$`)

func (s *LocalStore) path(key string) (string, error) {
	m := keyRe.FindStringSubmatch(key)
	if m == nil {
		return "", apperr.Validation("key", "Invalid capture key.", nil)
	}
	return filepath.Join(s.Root, m[1], key), nil
}

func (s *LocalStore) Put(r io.Reader, mimeType string) (Capture, error) {
	mt := normalizeMIME(mimeType)
	ext, ok := extByMIME[mt]
	if !ok {
		return Capture{}, apperr.Validation("file", fmt.Sprintf("Unsupported image type %q.", mimeType), nil)
	}
	now := s.now().UTC()
	key := fmt.Sprintf("%04d%02d_%s%s", now.Year(), int(now.Month()), randomHex(16), ext)
	full, err := s.path(key)
	if err != nil {
		return Capture{}, err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return Capture{}, err
	}
	f, err := os.Create(full)
	if err != nil {
		return Capture{}, err
	}

	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(f, h), io.LimitReader(r, MaxSize+1))
	cerr := f.Close()
	if err == nil {
		err = cerr
	}
	if err == nil && n > MaxSize {
		err = apperr.Validation("file", "The image is too large.", ErrTooLarge)
	}
	if err == nil && n == 0 {
		err = apperr.Validation("file", "The image is empty.", nil)
	}
	if err != nil {
		_ = os.Remove(full)
		return Capture{}, err
	}
	return Capture{Key: key, Size: n, SHA256: hex.EncodeToString(h.Sum(nil)), MIME: mt}, nil
}

func (s *LocalStore) Open(key string) ([]byte, string, error) {
	full, err := s.path(key)
	if err != nil {
		return nil, "", err
	}
	b, err := os.ReadFile(full)
	if errors.Is(err, os.ErrNotExist) {
		return nil, "", apperr.NotFound("capture.open", "Capture not found")
	}
	if err != nil {
		return nil, "", err
	}
	mt := mime.TypeByExtension(filepath.Ext(full))
	if mt == "" {
		mt = "image/jpeg"
	}
	return b, normalizeMIME(mt), nil
}

func (s *LocalStore) Delete(key string) error {
	full, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); errors.Is(err, os.ErrNotExist) {
		return apperr.NotFound("capture.delete", "Capture not found")
	} else if err != nil {
		return err
	}
	return nil
}

// randomHex возвращает hex длиной 2*n байт
func randomHex(n int) string {
	buf := make([]byte, n)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
