package domain

import "regexp"

// botTokenPattern matches the "bot<id>:<secret>" segment Telegram embeds in
// API and file download URLs.
var botTokenPattern = regexp.MustCompile(`bot\d+:[A-Za-z0-9_-]+`)

const redactedToken = "bot<redacted>"

// RedactToken masks Telegram bot tokens in s.
func RedactToken(s string) string {
	return botTokenPattern.ReplaceAllString(s, redactedToken)
}

type redactedError struct {
	err error
	msg string
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }

// RedactError returns err with any bot token masked in its message. The
// original error stays reachable through errors.Is and errors.As.
func RedactError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	redacted := RedactToken(msg)
	if redacted == msg {
		return err
	}
	return &redactedError{err: err, msg: redacted}
}
