package files

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	UniqueIDLength  = 10
	uniqueIDCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// NewUniqueID returns a random public handle of UniqueIDLength characters
// drawn from [a-zA-Z0-9].
func NewUniqueID() (string, error) {
	id, err := gonanoid.Generate(uniqueIDCharset, UniqueIDLength)
	if err != nil {
		return "", fmt.Errorf("generate unique id: %w", err)
	}
	return id, nil
}

// objectKey names a stored blob: <prefix><uuid>_<sanitized name><ext>.
func objectKey(prefix, filename, fallbackExt string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = fallbackExt
	}
	return fmt.Sprintf("%s%s_%s%s", prefix, uuid.NewString(), sanitizeName(filename), ext)
}

func sanitizeName(name string) string {
	name = filepath.Base(name)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return '_'
	}, name)
	if len(name) > 40 {
		name = name[:40]
	}
	if name == "" || name == "_" {
		return "file"
	}
	return name
}
