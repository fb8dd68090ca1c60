package static

import (
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultMIMEType is used when nothing better is known about a file.
const DefaultMIMEType = "application/octet-stream"

var ErrFileUnavailable = errors.New("file unavailable")

// FileData is a file read fully into memory.
type FileData struct {
	Body     []byte
	MIMEType string
	Length   int
}

// Loader reads files from disk on every call; nothing is cached.
type Loader struct {
	// Sniff enables content detection for unknown extensions.
	Sniff  bool
	logger *slog.Logger
}

func NewLoader(sniff bool, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{Sniff: sniff, logger: logger}
}

// Load reads path. Every failure is logged with its cause and reported as
// ErrFileUnavailable.
func (l *Loader) Load(path string) (*FileData, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		l.logger.Debug("file unavailable", slog.String("path", path), slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", ErrFileUnavailable, err)
	}

	return &FileData{
		Body:     body,
		MIMEType: l.mimeType(path, body),
		Length:   len(body),
	}, nil
}

func (l *Loader) mimeType(path string, body []byte) string {
	if ext := filepath.Ext(path); ext != "" {
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
	}
	if l.Sniff {
		return mimetype.Detect(body).String()
	}
	return DefaultMIMEType
}
