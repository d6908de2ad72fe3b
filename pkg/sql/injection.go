package sql

import (
	libinjection "github.com/corazawaf/libinjection-go"
)

// InjectionFinding describes an SQL injection pattern detected in free-text
// user input.
type InjectionFinding struct {
	Fingerprint string // libinjection fingerprint of the detected pattern
	Input       string // the text that was screened
}

// ScreenQuestion runs libinjection over a natural-language question before it
// is handed to the generator. The finding is a diagnostic signal only: the
// question still flows through generation and validation, which remain the
// actual safety boundary. Returns nil when nothing suspicious is found.
func ScreenQuestion(question string) *InjectionFinding {
	isSQLi, fingerprint := libinjection.IsSQLi(question)
	if !isSQLi {
		return nil
	}
	return &InjectionFinding{
		Fingerprint: string(fingerprint),
		Input:       question,
	}
}
