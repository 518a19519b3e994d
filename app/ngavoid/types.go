package ngavoid

import (
	"regexp"
	"strings"
)

// Level selects how aggressively links and words are obfuscated.
type Level int

const (
	LevelNone     Level = iota // query stripping only
	LevelLinks                 // NG words, NG URLs and post URL redirect
	LevelRedirect              // every link redirected, media hosts lose their "h"
	LevelProxy                 // images go through the AMP cache
)

const DefaultBlankLineThreshold = 128

// Settings are the per-operation knobs that select a Policy.
type Settings struct {
	Level              Level
	RemoveEmoji        bool
	BlankLineThreshold int
	// EmojiPattern is an optional emoji detector supplied by the credential
	// source. Nil means only the built-in symbol pattern is used.
	EmojiPattern *regexp.Regexp
}

// Rules is the YAML form of the redaction tables.
type Rules struct {
	NGWords            []SubstitutionRule `yaml:"ng_words"`
	NGURLs             []string           `yaml:"ng_urls"`
	NGQueryParams      []string           `yaml:"ng_query_params"`
	NGDomains          []DomainRule       `yaml:"ng_domains"`
	FixedSubstitutions []string           `yaml:"fixed_substitutions"`
	EmojiReplacements  []SubstitutionRule `yaml:"emoji_replacements"`
	UnicodeOffsets     []OffsetRule       `yaml:"unicode_offsets"`
	SurrogatesToStrip  []int              `yaml:"surrogates_to_strip"`
}

type SubstitutionRule struct {
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`
}

// DomainRule is either a literal (every occurrence re-encoded) or a
// pattern (first match re-encoded).
type DomainRule struct {
	Literal string `yaml:"literal"`
	Pattern string `yaml:"pattern"`
}

type OffsetRule struct {
	Pattern string `yaml:"pattern"`
	Offset  int    `yaml:"offset"`
}

type substitution struct {
	re          *regexp.Regexp
	replacement string
}

type domainMatcher struct {
	re  *regexp.Regexp
	all bool
}

type offsetRule struct {
	re     *regexp.Regexp
	offset rune
}

// RuleSet is a compiled, read-only Rules table. It is safe to share
// between goroutines and between policies.
type RuleSet struct {
	ngWords       []substitution
	ngURLs        []*regexp.Regexp
	ngQueryParams []*regexp.Regexp
	ngDomains     []domainMatcher
	fixed         []*regexp.Regexp
	emoji         []substitution
	offsets       []offsetRule
	surrogates    *strings.Replacer
}
