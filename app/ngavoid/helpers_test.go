package ngavoid

import "testing"

func newTestPolicy(t *testing.T, level Level, removeEmoji bool) *Policy {
	t.Helper()

	rules, err := DefaultRuleSet()
	if err != nil {
		t.Fatalf("Failed to compile default rules: %v", err)
	}

	policy, err := NewPolicy(Settings{Level: level, RemoveEmoji: removeEmoji}, rules)
	if err != nil {
		t.Fatalf("Failed to create policy: %v", err)
	}
	return policy
}
