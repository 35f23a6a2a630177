package audit

import (
	"strings"
	"testing"
)

func TestSummarizeInput(t *testing.T) {
	summary := SummarizeInput("run diagnostics on unit 7")

	if !strings.HasPrefix(summary, "hash:") {
		t.Fatalf("expected hash: prefix, got %q", summary)
	}
	digest := strings.TrimPrefix(summary, "hash:")
	if len(digest) != summaryHashLen {
		t.Errorf("expected %d-char digest, got %q", summaryHashLen, digest)
	}
	if strings.Contains(summary, "diagnostics") {
		t.Error("raw content leaked into summary")
	}
}

func TestSummarizeInput_Deterministic(t *testing.T) {
	a := SummarizeInput("same content")
	b := SummarizeInput("same content")
	if a != b {
		t.Errorf("same content produced different summaries: %q vs %q", a, b)
	}
	if a == SummarizeInput("other content") {
		t.Error("different content produced the same summary")
	}
}

func TestSummarizeOutput(t *testing.T) {
	content := "result payload"
	summary := SummarizeOutput(content)

	if !strings.HasPrefix(summary, "len:14 ") {
		t.Errorf("expected len:14 prefix, got %q", summary)
	}
	if !strings.Contains(summary, "hash:") {
		t.Errorf("expected content digest, got %q", summary)
	}
	if strings.Contains(summary, "payload") {
		t.Error("raw content leaked into summary")
	}
}

func TestSummarize_StructuredPayload(t *testing.T) {
	payload := map[string]int{"count": 3}

	in := SummarizeInput(payload)
	if !strings.HasPrefix(in, "hash:") {
		t.Errorf("expected hash summary for struct payload, got %q", in)
	}

	out := SummarizeOutput(payload)
	if !strings.HasPrefix(out, "len:") {
		t.Errorf("expected length summary for struct payload, got %q", out)
	}
}

func TestSummarize_NonSerializable(t *testing.T) {
	// Channels cannot be JSON-serialized; the summarizer must fall back to
	// a type tag instead of failing.
	ch := make(chan int)

	in := SummarizeInput(ch)
	if !strings.HasPrefix(in, "type:") {
		t.Errorf("expected type fallback, got %q", in)
	}

	out := SummarizeOutput(ch)
	if !strings.HasPrefix(out, "type:") {
		t.Errorf("expected type fallback, got %q", out)
	}
}

func TestSummarize_Nil(t *testing.T) {
	if got := SummarizeInput(nil); got != "" {
		t.Errorf("expected empty summary for nil input, got %q", got)
	}
	if got := SummarizeOutput(nil); got != "" {
		t.Errorf("expected empty summary for nil output, got %q", got)
	}
}
