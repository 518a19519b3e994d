package ngavoid

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yml
var defaultRules []byte

// DefaultRules returns the embedded rule tables.
func DefaultRules() (*Rules, error) {
	return parseRules(defaultRules, &Rules{})
}

// LoadRules reads rule tables from a YAML file. Tables the file omits keep
// their embedded defaults; an empty path yields the defaults unchanged.
func LoadRules(path string) (*Rules, error) {
	if path == "" {
		return DefaultRules()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	defaults, err := DefaultRules()
	if err != nil {
		return nil, err
	}

	rules, err := parseRules(data, defaults)
	if err != nil {
		return nil, fmt.Errorf("invalid rules %s: %w", path, err)
	}

	return rules, nil
}

// parseRules decodes data over base. A table present in data replaces the
// base table as a whole.
func parseRules(data []byte, base *Rules) (*Rules, error) {
	rules := *base
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := rules.validate(); err != nil {
		return nil, err
	}

	return &rules, nil
}

func (r *Rules) validate() error {
	for i, rule := range r.NGWords {
		if rule.Pattern == "" {
			return fmt.Errorf("ng word at index %d has an empty pattern", i)
		}
	}
	for i, rule := range r.NGDomains {
		if (rule.Literal == "") == (rule.Pattern == "") {
			return fmt.Errorf("ng domain at index %d must set exactly one of literal or pattern", i)
		}
	}
	for i, rule := range r.UnicodeOffsets {
		if rule.Offset <= 0 {
			return fmt.Errorf("unicode offset at index %d must be positive", i)
		}
	}
	for i, cp := range r.SurrogatesToStrip {
		if !utf8.ValidRune(rune(cp)) {
			return fmt.Errorf("surrogate at index %d is not a valid code point: %d", i, cp)
		}
	}
	return nil
}

// Compile turns the tables into a RuleSet.
func (r *Rules) Compile() (*RuleSet, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}

	rs := &RuleSet{}
	var err error

	if rs.ngWords, err = compileSubstitutions("ng word", r.NGWords); err != nil {
		return nil, err
	}
	if rs.emoji, err = compileSubstitutions("emoji replacement", r.EmojiReplacements); err != nil {
		return nil, err
	}
	if rs.ngURLs, err = compilePatterns("ng url", r.NGURLs); err != nil {
		return nil, err
	}
	if rs.ngQueryParams, err = compilePatterns("ng query param", r.NGQueryParams); err != nil {
		return nil, err
	}
	if rs.fixed, err = compilePatterns("fixed substitution", r.FixedSubstitutions); err != nil {
		return nil, err
	}

	for i, rule := range r.NGDomains {
		if rule.Literal != "" {
			rs.ngDomains = append(rs.ngDomains, domainMatcher{re: regexp.MustCompile(regexp.QuoteMeta(rule.Literal)), all: true})
			continue
		}
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to compile ng domain at index %d: %w", i, err)
		}
		rs.ngDomains = append(rs.ngDomains, domainMatcher{re: re})
	}

	for i, rule := range r.UnicodeOffsets {
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to compile unicode offset at index %d: %w", i, err)
		}
		rs.offsets = append(rs.offsets, offsetRule{re: re, offset: rune(rule.Offset)})
	}

	pairs := make([]string, 0, len(r.SurrogatesToStrip)*2)
	for _, cp := range r.SurrogatesToStrip {
		pairs = append(pairs, string(rune(cp)), "")
	}
	rs.surrogates = strings.NewReplacer(pairs...)

	return rs, nil
}

// DefaultRuleSet compiles the embedded tables.
func DefaultRuleSet() (*RuleSet, error) {
	rules, err := DefaultRules()
	if err != nil {
		return nil, err
	}
	return rules.Compile()
}

func compileSubstitutions(kind string, rules []SubstitutionRule) ([]substitution, error) {
	out := make([]substitution, 0, len(rules))
	for i, rule := range rules {
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to compile %s at index %d: %w", kind, i, err)
		}
		out = append(out, substitution{re: re, replacement: rule.Replacement})
	}
	return out, nil
}

func compilePatterns(kind string, patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for i, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to compile %s at index %d: %w", kind, i, err)
		}
		out = append(out, re)
	}
	return out, nil
}
