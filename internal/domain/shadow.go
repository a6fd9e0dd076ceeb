package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultControlPoint is the desired-state key the controller firmware
// watches to open the relay for the given number of milliseconds.
const DefaultControlPoint = "relay_on_timer"

// ShadowUpdate is a desired-state document carrying a single control point.
// It is built fresh for every publish and never reused.
type ShadowUpdate struct {
	State ShadowState `json:"state"`
}

type ShadowState struct {
	Desired map[string]int64 `json:"desired"`
}

func NewShadowUpdate(controlPoint string, value int64) ShadowUpdate {
	return ShadowUpdate{
		State: ShadowState{
			Desired: map[string]int64{controlPoint: value},
		},
	}
}

func (u ShadowUpdate) Marshal() ([]byte, error) {
	data, err := json.Marshal(u)
	if err != nil {
		return nil, fmt.Errorf("marshaling shadow update: %w", err)
	}
	return data, nil
}

// ShadowUpdateTopic returns the reserved shadow update topic for a thing.
func ShadowUpdateTopic(thingName string) string {
	return fmt.Sprintf("$aws/things/%s/shadow/update", thingName)
}

// TopicToSubject converts an MQTT-style topic into a NATS subject.
func TopicToSubject(topic string) string {
	return strings.ReplaceAll(strings.TrimPrefix(topic, "$"), "/", ".")
}
