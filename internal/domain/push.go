package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// PushChoice is the tri-state push decision.
type PushChoice int

// Push choices.
const (
	PushAsk PushChoice = iota
	PushYes
	PushNo
)

func (p PushChoice) String() string {
	switch p {
	case PushYes:
		return "yes"
	case PushNo:
		return "no"
	default:
		return "ask"
	}
}

// PushQuestion is the interactive push prompt.
const PushQuestion = "Push to default remote?"

// ParseBool parses the boolean spellings accepted on the command line:
// 1/true/yes/y and 0/false/no/n, case-insensitive.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y":
		return true, nil
	case "0", "false", "no", "n":
		return false, nil
	default:
		return false, fmt.Errorf("%w %q (expected one of 1, true, yes, y, 0, false, no, n)", ErrInvalidBool, s)
	}
}

// ParsePushChoice parses a --push-to-remote value. An empty value means ask.
func ParsePushChoice(s string) (PushChoice, error) {
	if s == "" {
		return PushAsk, nil
	}
	v, err := ParseBool(s)
	if err != nil {
		return PushAsk, err
	}
	if v {
		return PushYes, nil
	}
	return PushNo, nil
}

var (
	scpLikeURL = regexp.MustCompile(`^git@([^:]+):(.+)$`)
	sshURL     = regexp.MustCompile(`^ssh://git@([^/]+?)(?::\d+)?/(.+)$`)
)

// HTTPSRemoteURL rewrites SSH remote URLs into their HTTPS equivalent.
// Other URLs are returned unchanged.
func HTTPSRemoteURL(url string) string {
	url = strings.TrimSpace(url)
	if m := scpLikeURL.FindStringSubmatch(url); m != nil {
		return fmt.Sprintf("https://%s/%s", m[1], m[2])
	}
	if m := sshURL.FindStringSubmatch(url); m != nil {
		return fmt.Sprintf("https://%s/%s", m[1], m[2])
	}
	return url
}
