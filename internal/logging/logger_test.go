package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestNewWithWriterFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "loud")

	logger.Debug("hidden")
	logger.Info("shown", "session_id", "s-1")

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("expected a single json line, got %q: %v", buf.String(), err)
	}
	if line["msg"] != "shown" || line["session_id"] != "s-1" {
		t.Fatalf("unexpected log line %v", line)
	}
}

func TestContextRoundTrip(t *testing.T) {
	fallback := Discard()
	if FromContext(context.Background(), fallback) != fallback {
		t.Fatal("expected fallback without a stored logger")
	}
	stored := Discard()
	ctx := WithContext(context.Background(), stored)
	if FromContext(ctx, fallback) != stored {
		t.Fatal("expected stored logger")
	}
}
