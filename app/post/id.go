package post

import (
	"errors"
	"regexp"
	"strings"
)

var ErrInvalidID = errors.New("invalid post id")

var (
	statusPath = regexp.MustCompile(`status(?:es)?/(\d+)`)
	bareID     = regexp.MustCompile(`^\d+$`)
)

// ExtractID accepts a numeric post id or any URL containing
// "status/<digits>".
func ExtractID(input string) (string, error) {
	input = strings.TrimSpace(input)
	if bareID.MatchString(input) {
		return input, nil
	}
	if m := statusPath.FindStringSubmatch(input); m != nil {
		return m[1], nil
	}
	return "", ErrInvalidID
}
