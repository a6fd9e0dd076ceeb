package domain

import (
	"fmt"
	"time"
)

type Action string

const (
	ActionSprinkle Action = "sprinkle"
	ActionWater    Action = "water"
	ActionStop     Action = "stop"
	ActionUnknown  Action = "unknown"
)

// Response template keys.
const (
	KeySprinkling     = "SPRINKLING_LAWN"
	KeyWatering       = "WATERING_LAWN"
	KeyStop           = "STOP_MESSAGE"
	KeyHelp           = "HELP_MESSAGE"
	KeyHelpReprompt   = "HELP_REPROMPT"
	KeyFallback       = "FALLBACK_MESSAGE"
	KeyFallbackPrompt = "FALLBACK_REPROMPT"
	KeyError          = "ERROR_MESSAGE"
	KeyWelcome        = "WELCOME_MESSAGE"
)

// ResolveAction classifies the d_action slot value. Matching is exact.
func ResolveAction(slot string) Action {
	switch slot {
	case "sprinkle":
		return ActionSprinkle
	case "water":
		return ActionWater
	case "stop", "off":
		return ActionStop
	default:
		return ActionUnknown
	}
}

// ParseAction accepts the configured names of an action.
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionSprinkle, ActionWater, ActionStop:
		return a, nil
	default:
		return "", fmt.Errorf("unknown action %q", s)
	}
}

// Durations holds the relay timer values written for each action, in
// milliseconds as the controller firmware expects them.
type Durations struct {
	Sprinkle int64
	Water    int64
	Off      int64
}

func DefaultDurations() Durations {
	return Durations{
		Sprinkle: (10 * time.Second).Milliseconds(),
		Water:    (30 * time.Minute).Milliseconds(),
		Off:      1,
	}
}

// Resolution is what the watering path publishes and says for an action.
type Resolution struct {
	Action      Action
	Duration    int64
	ResponseKey string
}

func (d Durations) Resolve(a Action) Resolution {
	switch a {
	case ActionSprinkle:
		return Resolution{Action: a, Duration: d.Sprinkle, ResponseKey: KeySprinkling}
	case ActionWater:
		return Resolution{Action: a, Duration: d.Water, ResponseKey: KeyWatering}
	default:
		return Resolution{Action: a, Duration: d.Off, ResponseKey: KeyStop}
	}
}
