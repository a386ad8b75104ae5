package corpus

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	apperrors "github.com/Adithya-Monish-Kumar-K/questions/pkg/errors"
)

// DirLoader reads every regular file of a directory as one document, keyed
// by file name. Hidden files and sub-directories are ignored.
type DirLoader struct {
	Dir string
	// Extensions restricts loading to these suffixes (e.g. ".txt"); empty
	// means every file.
	Extensions []string
	// SkipUnreadable logs and skips files that cannot be read or are not
	// valid UTF-8 instead of failing the whole load.
	SkipUnreadable bool

	logger *slog.Logger
}

// NewDirLoader creates a loader for dir.
func NewDirLoader(dir string, extensions []string, skipUnreadable bool) *DirLoader {
	return &DirLoader{
		Dir:            dir,
		Extensions:     extensions,
		SkipUnreadable: skipUnreadable,
		logger:         slog.Default().With("component", "corpus-loader", "dir", dir),
	}
}

// Load reads the directory. Documents are ordered by file name.
func (l *DirLoader) Load(ctx context.Context) (*Corpus, error) {
	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		return nil, apperrors.CorpusReadf("reading corpus directory %s: %v", l.Dir, err)
	}
	docs := make([]Document, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("loading corpus: %w", err)
		}
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !l.accepts(name) {
			continue
		}
		text, err := readText(filepath.Join(l.Dir, name))
		if err != nil {
			if l.SkipUnreadable {
				l.logger.Warn("skipping unreadable document", "file", name, "error", err)
				continue
			}
			return nil, err
		}
		docs = append(docs, Document{ID: name, Text: text})
	}
	if len(docs) == 0 {
		return nil, apperrors.Newf(apperrors.ErrEmptyCorpus, 0, "no documents found in %s", l.Dir)
	}
	l.logger.Debug("corpus directory read", "documents", len(docs))
	return New(docs...)
}

func (l *DirLoader) accepts(name string) bool {
	if len(l.Extensions) == 0 {
		return true
	}
	ext := filepath.Ext(name)
	for _, want := range l.Extensions {
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", apperrors.CorpusReadf("reading %s: %v", path, err)
	}
	if !utf8.Valid(data) {
		return "", apperrors.CorpusReadf("%s is not valid UTF-8", path)
	}
	return string(data), nil
}
