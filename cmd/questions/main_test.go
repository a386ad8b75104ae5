package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "github.com/Adithya-Monish-Kumar-K/questions/pkg/errors"
)

func writeCorpus(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"python.txt": "Python is a programming language. It was created by Guido van Rossum.\nPython emphasizes code readability.",
		"cats.txt":   "Cats are small carnivorous mammals.\nCats sleep a lot.",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func runCLI(args []string, stdin string) (code int, stdout, stderr string) {
	var out, errOut bytes.Buffer
	code = run(context.Background(), args, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRunPrompt(t *testing.T) {
	code, out, stderr := runCLI([]string{writeCorpus(t)}, "Who created Python?\n")
	if code != apperrors.ExitOK {
		t.Fatalf("exit = %d, stderr = %s", code, stderr)
	}
	want := "Query: It was created by Guido van Rossum.\n"
	if out != want {
		t.Errorf("stdout = %q, want %q", out, want)
	}
}

func TestRunLogLevel(t *testing.T) {
	corpusDir := writeCorpus(t)
	args := []string{"-q", "Do cats sleep?", corpusDir}

	_, _, stderr := runCLI(args, "")
	if strings.Contains(stderr, "corpus ready") {
		t.Errorf("info logs shown without being asked for: %s", stderr)
	}

	t.Setenv("QA_LOGGING_LEVEL", "info")
	code, out, stderr := runCLI(args, "")
	if code != apperrors.ExitOK {
		t.Fatalf("exit = %d, stderr = %s", code, stderr)
	}
	if !strings.Contains(stderr, "corpus ready") {
		t.Errorf("QA_LOGGING_LEVEL=info ignored, stderr = %q", stderr)
	}
	if out != "Cats sleep a lot.\n" {
		t.Errorf("stdout = %q", out)
	}
}

func TestRunQueryFlag(t *testing.T) {
	code, out, stderr := runCLI([]string{"--query", "Do cats sleep?", writeCorpus(t)}, "")
	if code != apperrors.ExitOK {
		t.Fatalf("exit = %d, stderr = %s", code, stderr)
	}
	if out != "Cats sleep a lot.\n" {
		t.Errorf("stdout = %q", out)
	}
}

func TestRunSentenceMatches(t *testing.T) {
	code, out, _ := runCLI([]string{"-q", "cats", "--sentence-matches", "5", writeCorpus(t)}, "")
	if code != apperrors.ExitOK {
		t.Fatalf("exit = %d", code)
	}
	// Both cat sentences share the top score; density orders them.
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 || lines[0] != "Cats sleep a lot." {
		t.Errorf("lines = %q", lines)
	}
}

func TestRunUsage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no corpus", nil},
		{"two corpora", []string{"a", "b"}},
		{"unknown flag", []string{"--bogus", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out, stderr := runCLI(tt.args, "")
			if code != apperrors.ExitUsage {
				t.Errorf("exit = %d, want %d", code, apperrors.ExitUsage)
			}
			if out != "" {
				t.Errorf("stdout must stay empty, got %q", out)
			}
			if !strings.Contains(stderr, "Usage: questions") {
				t.Errorf("stderr = %q", stderr)
			}
		})
	}
}

func TestRunCorpusErrors(t *testing.T) {
	empty := t.TempDir()
	code, _, stderr := runCLI([]string{"-q", "python", empty}, "")
	if code != apperrors.ExitError {
		t.Errorf("empty corpus exit = %d, want %d", code, apperrors.ExitError)
	}
	if !strings.Contains(stderr, "empty") {
		t.Errorf("stderr = %q", stderr)
	}

	code, _, _ = runCLI([]string{"-q", "python", filepath.Join(empty, "missing")}, "")
	if code != apperrors.ExitError {
		t.Errorf("missing dir exit = %d, want %d", code, apperrors.ExitError)
	}
}

func TestRunInvalidMatches(t *testing.T) {
	code, _, _ := runCLI([]string{"--file-matches", "0", "-q", "python", writeCorpus(t)}, "")
	if code != apperrors.ExitError {
		t.Errorf("exit = %d, want %d", code, apperrors.ExitError)
	}
}
