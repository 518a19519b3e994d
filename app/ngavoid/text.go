package ngavoid

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// urlSpan matches a link up to the next whitespace, including vertical tab
// and Unicode spaces such as U+3000.
var urlSpan = regexp.MustCompile(`https?://[^\s\x0B\p{Z}\x{FEFF}]*`)

var htmlEntities = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&amp;", "&",
	"&quot;", `"`,
)

// TextProcessor applies the text half of a Policy.
type TextProcessor struct {
	policy *Policy
}

func NewTextProcessor(policy *Policy) *TextProcessor {
	return &TextProcessor{policy: policy}
}

// DecodeHTMLEntities replaces &lt; &gt; &amp; &quot; and nothing else.
func DecodeHTMLEntities(text string) string {
	return htmlEntities.Replace(text)
}

// SubstituteNGWords applies every NG word rule in order, never touching
// URL spans. It is the identity at LevelNone.
func (tp *TextProcessor) SubstituteNGWords(text string) string {
	if tp.policy.level == LevelNone {
		return text
	}

	for _, rule := range tp.policy.rules.ngWords {
		text = replaceOutsideURLs(text, rule)
	}
	return text
}

func replaceOutsideURLs(text string, rule substitution) string {
	spans := urlSpan.FindAllStringIndex(text, -1)
	if spans == nil {
		return rule.re.ReplaceAllString(text, rule.replacement)
	}

	var b strings.Builder
	last := 0
	for _, span := range spans {
		b.WriteString(rule.re.ReplaceAllString(text[last:span[0]], rule.replacement))
		b.WriteString(text[span[0]:span[1]])
		last = span[1]
	}
	b.WriteString(rule.re.ReplaceAllString(text[last:], rule.replacement))
	return b.String()
}

// StripEmoji normalizes or removes pictographs when the policy asks for it.
func (tp *TextProcessor) StripEmoji(text string) string {
	if !tp.policy.removeEmoji {
		return text
	}

	rules := tp.policy.rules
	text = rules.surrogates.Replace(text)

	for _, rule := range rules.emoji {
		text = rule.re.ReplaceAllLiteralString(text, rule.replacement)
	}

	for _, rule := range rules.offsets {
		offset := rule.offset
		text = rule.re.ReplaceAllStringFunc(text, func(m string) string {
			r, _ := utf8.DecodeRuneInString(m)
			return string(r - offset)
		})
	}

	if tp.policy.emojiPattern != nil {
		text = tp.policy.emojiPattern.ReplaceAllString(text, "")
	}
	text = symbolPattern.ReplaceAllString(text, "")

	return stripKaomoji(text)
}

// CollapseBlankLines drops whitespace-only lines once the text has more
// lines than the policy threshold.
func (tp *TextProcessor) CollapseBlankLines(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) <= tp.policy.blankLineThreshold {
		return text
	}

	kept := make([]string, 0, len(lines))
	for i, line := range lines {
		// the segment after the final newline is not terminated, keep it
		if i < len(lines)-1 && strings.TrimSpace(line) == "" {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// ProcessText is the full text pipeline used for names, titles and bodies.
func (tp *TextProcessor) ProcessText(text string) string {
	text = tp.StripEmoji(text)
	text = DecodeHTMLEntities(text)
	text = tp.SubstituteNGWords(text)
	return tp.CollapseBlankLines(text)
}
