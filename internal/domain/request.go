package domain

import "time"

// Request types sent by the voice platform.
const (
	RequestTypeLaunch       = "LaunchRequest"
	RequestTypeIntent       = "IntentRequest"
	RequestTypeSessionEnded = "SessionEndedRequest"
)

// Intent names the skill recognizes.
const (
	IntentWaterLawn = "WaterLawnIntent"
	IntentHelp      = "AMAZON.HelpIntent"
	IntentFallback  = "AMAZON.FallbackIntent"
	IntentCancel    = "AMAZON.CancelIntent"
	IntentStop      = "AMAZON.StopIntent"
)

// SlotAction is the slot carrying the watering sub-command.
const SlotAction = "d_action"

type RequestEnvelope struct {
	Version string   `json:"version"`
	Session *Session `json:"session,omitempty"`
	Request Request  `json:"request"`
}

type Session struct {
	New         bool   `json:"new"`
	SessionID   string `json:"sessionId"`
	Application struct {
		ApplicationID string `json:"applicationId"`
	} `json:"application"`
}

type Request struct {
	Type      string        `json:"type"`
	RequestID string        `json:"requestId"`
	Timestamp time.Time     `json:"timestamp"`
	Locale    string        `json:"locale"`
	Reason    string        `json:"reason,omitempty"`
	Error     *RequestError `json:"error,omitempty"`
	Intent    *Intent       `json:"intent,omitempty"`
}

// RequestError is attached to SessionEndedRequest when the platform ended
// the session because of a problem with the skill's response.
type RequestError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type Intent struct {
	Name               string          `json:"name"`
	ConfirmationStatus string          `json:"confirmationStatus,omitempty"`
	Slots              map[string]Slot `json:"slots,omitempty"`
}

type Slot struct {
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
}

// SlotValue returns the raw value of the named slot, or "" when the request
// has no intent or the slot was not filled.
func (r Request) SlotValue(name string) string {
	if r.Intent == nil {
		return ""
	}
	return r.Intent.Slots[name].Value
}

func (r Request) IntentName() string {
	if r.Intent == nil {
		return ""
	}
	return r.Intent.Name
}

type RequestKind string

const (
	KindLaunch       RequestKind = "launch"
	KindWaterLawn    RequestKind = "water_lawn"
	KindHelp         RequestKind = "help"
	KindFallback     RequestKind = "fallback"
	KindStop         RequestKind = "stop"
	KindSessionEnded RequestKind = "session_ended"
	KindUnhandled    RequestKind = "unhandled"
)

// Classify maps a request onto the closed set of kinds the skill answers.
func Classify(r Request) RequestKind {
	switch r.Type {
	case RequestTypeLaunch:
		return KindLaunch
	case RequestTypeSessionEnded:
		return KindSessionEnded
	case RequestTypeIntent:
		switch r.IntentName() {
		case IntentWaterLawn:
			return KindWaterLawn
		case IntentHelp:
			return KindHelp
		case IntentFallback:
			return KindFallback
		case IntentCancel, IntentStop:
			return KindStop
		}
	}
	return KindUnhandled
}
