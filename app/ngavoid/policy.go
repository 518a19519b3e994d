package ngavoid

import (
	"fmt"
	"regexp"
)

// Policy is the resolved, immutable rule bundle for one copy operation.
type Policy struct {
	level              Level
	removeEmoji        bool
	blankLineThreshold int
	emojiPattern       *regexp.Regexp
	rules              *RuleSet
}

func NewPolicy(settings Settings, rules *RuleSet) (*Policy, error) {
	if rules == nil {
		return nil, fmt.Errorf("rule set is nil")
	}
	if settings.Level < LevelNone || settings.Level > LevelProxy {
		return nil, fmt.Errorf("level must be between %d and %d, got %d", LevelNone, LevelProxy, settings.Level)
	}
	if settings.BlankLineThreshold < 0 {
		return nil, fmt.Errorf("blank line threshold must be non-negative")
	}

	threshold := settings.BlankLineThreshold
	if threshold == 0 {
		threshold = DefaultBlankLineThreshold
	}

	return &Policy{
		level:              settings.Level,
		removeEmoji:        settings.RemoveEmoji,
		blankLineThreshold: threshold,
		emojiPattern:       settings.EmojiPattern,
		rules:              rules,
	}, nil
}

func (p *Policy) Level() Level {
	return p.level
}

func (p *Policy) RemoveEmoji() bool {
	return p.removeEmoji
}

func (p *Policy) BlankLineThreshold() int {
	return p.blankLineThreshold
}
