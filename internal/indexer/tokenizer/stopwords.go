package tokenizer

import (
	"bufio"
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
)

//go:embed data/english.txt
var englishStopwords []byte

// EnglishStopwords returns the built-in English stop-word list.
func EnglishStopwords() []string {
	words, err := ParseStopwords(bytes.NewReader(englishStopwords))
	if err != nil {
		panic(fmt.Sprintf("embedded stop-word list is invalid: %v", err))
	}
	return words
}

// LoadStopwords reads a stop-word list from disk. The file holds one word
// per line; blank lines and lines starting with '#' are skipped.
func LoadStopwords(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening stop-word file %s: %w", path, err)
	}
	defer f.Close()
	words, err := ParseStopwords(f)
	if err != nil {
		return nil, fmt.Errorf("reading stop-word file %s: %w", path, err)
	}
	return words, nil
}

// ParseStopwords reads a newline separated stop-word list.
func ParseStopwords(r io.Reader) ([]string, error) {
	words := make([]string, 0, 200)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, strings.ToLower(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return words, nil
}
