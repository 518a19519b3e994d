package ngavoid

import "testing"

func TestNewPolicy(t *testing.T) {
	rules, err := DefaultRuleSet()
	if err != nil {
		t.Fatalf("Failed to compile default rules: %v", err)
	}

	t.Run("defaults threshold", func(t *testing.T) {
		p, err := NewPolicy(Settings{Level: LevelLinks}, rules)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if p.BlankLineThreshold() != DefaultBlankLineThreshold {
			t.Errorf("Expected threshold %d, got %d", DefaultBlankLineThreshold, p.BlankLineThreshold())
		}
		if p.Level() != LevelLinks {
			t.Errorf("Expected level %d, got %d", LevelLinks, p.Level())
		}
	})

	t.Run("rejects level out of range", func(t *testing.T) {
		for _, level := range []Level{-1, 4} {
			if _, err := NewPolicy(Settings{Level: level}, rules); err == nil {
				t.Errorf("Expected error for level %d", level)
			}
		}
	})

	t.Run("rejects negative threshold", func(t *testing.T) {
		if _, err := NewPolicy(Settings{BlankLineThreshold: -1}, rules); err == nil {
			t.Error("Expected error for negative threshold")
		}
	})

	t.Run("requires rules", func(t *testing.T) {
		if _, err := NewPolicy(Settings{}, nil); err == nil {
			t.Error("Expected error for nil rule set")
		}
	})
}
