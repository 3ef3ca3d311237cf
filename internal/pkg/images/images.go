package images

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidImage = errors.New("invalid base64 image")

// Store сохраняет декодированные base64-изображения на диск.
type Store struct {
	baseDir string
}

func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// SaveBase64 принимает data URL вида "data:image/png;base64,...."
// или голый base64 и возвращает относительный путь сохранённого файла.
func (s *Store) SaveBase64(payload string) (string, error) {
	ext := "png"
	data := payload

	if strings.HasPrefix(payload, "data:") {
		parts := strings.SplitN(payload, ";base64,", 2)
		if len(parts) != 2 {
			return "", ErrInvalidImage
		}
		mime := strings.TrimPrefix(parts[0], "data:")
		if e, ok := strings.CutPrefix(mime, "image/"); ok && e != "" {
			ext = e
		}
		data = parts[1]
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return "", ErrInvalidImage
	}
	if len(raw) == 0 {
		return "", ErrInvalidImage
	}

	rel := filepath.Join("recipes", "images", fmt.Sprintf("%s.%s", uuid.NewString(), ext))
	full := filepath.Join(s.baseDir, rel)

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(full, raw, 0o644); err != nil {
		return "", err
	}

	return rel, nil
}
