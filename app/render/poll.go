package render

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/lysyi3m/post-copy/app/post"
)

func (f *Formatter) formatPoll(poll *post.Poll) string {
	total := poll.TotalVotes()

	var b strings.Builder
	if poll.IsFinal {
		b.WriteString("【投票結果:")
	} else {
		b.WriteString("【投票中:")
	}
	b.WriteString(remainingTime(poll, f.now()))
	if poll.IsFinal {
		b.WriteString("(計")
	} else {
		b.WriteString("(現在")
	}
	b.WriteString(f.printer.Sprintf("%d", total))
	b.WriteString("票)】\n")

	for i, c := range poll.Choices {
		b.WriteString("[" + strconv.Itoa(i+1) + "] " + c.Label)
		b.WriteString("(" + strconv.FormatFloat(percentage(c.Votes, total), 'f', -1, 64) + "%)\n")
	}
	return b.String()
}

// percentage is rounded to one decimal place.
func percentage(votes, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(votes)/float64(total)*1000) / 10
}

// remainingTime reports only the largest non-zero unit left before the
// poll closes.
func remainingTime(poll *post.Poll, now time.Time) string {
	if poll.IsFinal || poll.EndTime.IsZero() {
		return ""
	}

	secs := int64(poll.EndTime.Sub(now) / time.Second)
	if secs <= 0 {
		return ""
	}

	switch {
	case secs >= 86400:
		return "残り" + strconv.FormatInt(secs/86400, 10) + "日"
	case secs >= 3600:
		return "残り" + strconv.FormatInt(secs/3600, 10) + "時間"
	case secs >= 60:
		return "残り" + strconv.FormatInt(secs/60, 10) + "分"
	}
	return "残り" + strconv.FormatInt(secs, 10) + "秒"
}
