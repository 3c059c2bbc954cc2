package shared

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
)

func TestGenerateID(t *testing.T) {
	first := GenerateID()
	second := GenerateID()

	if first == "" || second == "" {
		t.Fatal("expected non-empty IDs")
	}
	if first == second {
		t.Errorf("expected unique IDs, got %s twice", first)
	}
}

func TestGenerateState(t *testing.T) {
	first, err := GenerateState()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(first) != 32 {
		t.Errorf("expected 32 hex characters, got %d", len(first))
	}

	second, err := GenerateState()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if first == second {
		t.Error("expected unique state tokens")
	}
}

func TestMarshalJSON(t *testing.T) {
	data := map[string]string{"artist": "Boards of Canada"}

	t.Run("compact", func(t *testing.T) {
		out, err := MarshalJSON(data, false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if bytes.Contains(out, []byte("\n")) {
			t.Errorf("expected compact output, got %s", out)
		}
	})

	t.Run("pretty", func(t *testing.T) {
		out, err := MarshalJSON(data, true)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !bytes.Contains(out, []byte("  ")) {
			t.Errorf("expected indented output, got %s", out)
		}

		var decoded map[string]string
		if err := json.Unmarshal(out, &decoded); err != nil {
			t.Fatalf("output should round trip: %v", err)
		}
		if decoded["artist"] != "Boards of Canada" {
			t.Errorf("unexpected round trip value: %v", decoded)
		}
	})

	t.Run("unmarshalable value", func(t *testing.T) {
		if _, err := MarshalJSON(make(chan int), false); err == nil {
			t.Error("expected error for channel value")
		}
	})
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)

	logger.Info("hello")
	if !bytes.Contains(buf.Bytes(), []byte("hello")) {
		t.Errorf("expected log output in buffer, got %q", buf.String())
	}

	if NewLogger(nil) == nil {
		t.Error("expected logger with default writer")
	}
}

func TestNewFileLogger(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "logs", "app.log")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	logger.Info("written to file")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file should exist: %v", err)
	}
	if !bytes.Contains(data, []byte("written to file")) {
		t.Errorf("expected log line in file, got %q", data)
	}
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)
	child := WithLogger(logger, "component", "test")

	child.Info("tagged")
	if !bytes.Contains(buf.Bytes(), []byte("component")) {
		t.Errorf("expected key-value context in output, got %q", buf.String())
	}
}

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)

	SetLogLevel(logger, log.ErrorLevel)
	logger.Info("suppressed")
	if buf.Len() != 0 {
		t.Errorf("expected info suppressed at error level, got %q", buf.String())
	}

	logger.Error("emitted")
	if !bytes.Contains(buf.Bytes(), []byte("emitted")) {
		t.Errorf("expected error output, got %q", buf.String())
	}
}
