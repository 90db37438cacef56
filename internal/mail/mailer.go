package mail

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Mailer sends notification emails. Sending is always best-effort for
// callers: a failed notification must never fail the booking operation
// that triggered it.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// FileMailer is a mock Mailer that writes each message as a text file into a
// local directory. It stands in for a real mail provider in development.
type FileMailer struct {
	dir    string
	logger *zap.Logger
}

// NewFileMailer creates a FileMailer writing into dir.
func NewFileMailer(dir string, logger *zap.Logger) (*FileMailer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create mail directory: %w", err)
	}
	return &FileMailer{dir: dir, logger: logger}, nil
}

// Send writes the message to a file named after the recipient and timestamp.
func (m *FileMailer) Send(ctx context.Context, to, subject, body string) error {
	timestamp := time.Now().UTC().Format("20060102_150405.000000000")
	name := fmt.Sprintf("%s_%s.txt", sanitize(to), timestamp)

	content := fmt.Sprintf("To: %s\nSubject: %s\n\n%s", to, subject, body)
	if err := os.WriteFile(filepath.Join(m.dir, name), []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write mail file: %w", err)
	}

	m.logger.Info("mock email sent",
		zap.String("to", to),
		zap.String("subject", subject),
	)
	return nil
}

// sanitize keeps recipient-derived file names free of path separators.
func sanitize(s string) string {
	return strings.NewReplacer("/", "_", "\\", "_").Replace(s)
}
