package insights

import "testing"

func TestPromptLengthCountsUTF16Units(t *testing.T) {
	// each emoji is two UTF-16 units
	if msg := promptLength("😀😀😀"); msg != "" {
		t.Fatalf("expected valid prompt, got %q", msg)
	}
	if msg := promptLength("😀😀"); msg == "" {
		t.Fatalf("expected four units to be rejected")
	}
}
