package ngavoid

import (
	"regexp"
	"strings"
)

// kaomojiText lists characters that are ordinary prose. Anything outside it
// counts as face material.
const kaomojiText = `0-9A-Za-z!-@\[-` + "`" + `{-}~ぁ-ヶ・-ヾ、-〃々-〕一-龠！-～\nー…｡-ﾟ￠-￥▽△○□◎【】∀∂∃∇∈∋∑－√∝∞∟∠∥∧-∬∮∴∵∽≒≠≡≦≧≪≫⊂⊃⊆⊇⊥⊿～〜Α-ΡΣ-Ωα-ρσ-ωА-яё´°±¨×÷─-┃┌┏┐┓└┗┘┛├┝┠┣-┥┨┫┬┯┰┳┴┸┻┼┿╂╋←-↓⇒⇔ 　-〕〝〟`

const (
	kaomojiNonText    = `[^` + kaomojiText + `]`
	kaomojiFiller     = `[ovっつ゜ニノ三二\\/]`
	kaomojiOpen       = `[(∩꒰（₍]`
	kaomojiClose      = `[)∩꒱）₎]+`
	kaomojiSurrounder = `(?:` + kaomojiNonText + `|` + kaomojiFiller + `)*`
)

var (
	kaomojiPattern = regexp.MustCompile(kaomojiSurrounder + kaomojiOpen + `.*?` + kaomojiClose + kaomojiSurrounder)
	nonTextPattern = regexp.MustCompile(kaomojiNonText)
)

// stripKaomoji deletes bracketed faces. A bracketed span made only of prose
// characters, like a parenthetical remark, is left alone.
func stripKaomoji(text string) string {
	matches := kaomojiPattern.FindAllString(text, -1)
	for _, m := range matches {
		if nonTextPattern.MatchString(m) {
			text = strings.Replace(text, m, "", 1)
		}
	}
	return text
}
