// Package fixtures implements pipeline.MessageSource over a directory of
// plain-text message bodies, standing in for the .msg/.pst container
// decoders that stay external collaborators (not reimplemented here).
package fixtures

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaero/internal/models"
)

// Source reads every *.txt file in a directory as one EmailMessage, using
// the filename (minus extension) as the subject.
type Source struct {
	dir    string
	logger arbor.ILogger
}

// NewSource builds a fixture-directory message source.
func NewSource(dir string, logger arbor.ILogger) *Source {
	return &Source{dir: dir, logger: logger}
}

// FetchMessages reads every fixture file in the directory, in sorted
// filename order, and decodes each into an EmailMessage. A per-file read
// error is recorded on that message's Error field rather than aborting
// the whole batch.
func (s *Source) FetchMessages(ctx context.Context) ([]models.EmailMessage, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("fixtures: read dir %s: %w", s.dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	msgs := make([]models.EmailMessage, 0, len(names))
	for _, name := range names {
		if ctx.Err() != nil {
			return msgs, ctx.Err()
		}

		path := filepath.Join(s.dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			msgs = append(msgs, models.EmailMessage{
				SourcePath: path,
				Parser:     "fixture",
				Error:      err.Error(),
			})
			if s.logger != nil {
				s.logger.Warn().Err(err).Str("path", path).Msg("fixtures: failed to read message file")
			}
			continue
		}

		subject := strings.TrimSuffix(name, filepath.Ext(name))
		msgs = append(msgs, models.EmailMessage{
			SourcePath: path,
			Subject:    subject,
			Body:       string(data),
			Parser:     "fixture",
		})
	}

	return msgs, nil
}
