package status

import (
	"strconv"
	"strings"
)

// Verb is the command word at the head of a protocol line.
type Verb string

// The verbs the worker may send. Anything else is ignored: the worker is
// trusted but not version-locked to this app, so an unknown verb must
// never fault the session.
const (
	VerbActivate           Verb = "ACTIVATE"
	VerbHide               Verb = "HIDE"
	VerbShow               Verb = "SHOW"
	VerbTitle              Verb = "TITLE"
	VerbMessage            Verb = "MESSAGE"
	VerbDetail             Verb = "DETAIL"
	VerbPercent            Verb = "PERCENT"
	VerbGetStopButtonState Verb = "GETSTOPBUTTONSTATE"
	VerbHideStopButton     Verb = "HIDESTOPBUTTON"
	VerbShowStopButton     Verb = "SHOWSTOPBUTTON"
	VerbEnableStopButton   Verb = "ENABLESTOPBUTTON"
	VerbDisableStopButton  Verb = "DISABLESTOPBUTTON"
	VerbRestartAlert       Verb = "RESTARTALERT"
	VerbQuit               Verb = "QUIT"
)

// Command is one decoded protocol line.
type Command struct {
	Verb    Verb
	Payload string
}

// Decode splits a line (without its trailing newline) into verb and
// payload. The wire format is "VERB: payload"; the payload may be empty
// but the ": " separator is required. Lines without it decode with
// ok=false.
func Decode(line string) (Command, bool) {
	i := strings.Index(line, ": ")
	if i < 0 {
		return Command{}, false
	}
	return Command{Verb: Verb(line[:i]), Payload: line[i+2:]}, true
}

// Progress describes the progress indicator mode.
type Progress struct {
	Indeterminate bool
	Percent       float64 // meaningful only when determinate
}

// ParsePercent maps a PERCENT payload onto a progress mode: negative
// selects indeterminate, values above 100 clamp to 100. Unparseable
// payloads report ok=false and leave the current mode untouched.
func ParsePercent(payload string) (Progress, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(payload), 64)
	if err != nil {
		return Progress{}, false
	}
	if f < 0 {
		return Progress{Indeterminate: true}, true
	}
	if f > 100 {
		f = 100
	}
	return Progress{Percent: f}, true
}
