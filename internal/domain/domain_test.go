package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lawn-irrigation/internal/domain"
)

func TestClassify(t *testing.T) {
	intent := func(name string) domain.Request {
		return domain.Request{Type: domain.RequestTypeIntent, Intent: &domain.Intent{Name: name}}
	}

	tests := []struct {
		name string
		req  domain.Request
		want domain.RequestKind
	}{
		{"launch", domain.Request{Type: domain.RequestTypeLaunch}, domain.KindLaunch},
		{"water lawn", intent(domain.IntentWaterLawn), domain.KindWaterLawn},
		{"help", intent(domain.IntentHelp), domain.KindHelp},
		{"fallback", intent(domain.IntentFallback), domain.KindFallback},
		{"cancel", intent(domain.IntentCancel), domain.KindStop},
		{"stop", intent(domain.IntentStop), domain.KindStop},
		{"session ended", domain.Request{Type: domain.RequestTypeSessionEnded}, domain.KindSessionEnded},
		{"other intent", intent("AMAZON.PauseIntent"), domain.KindUnhandled},
		{"intent request without intent", domain.Request{Type: domain.RequestTypeIntent}, domain.KindUnhandled},
		{"other type", domain.Request{Type: "CanFulfillIntentRequest"}, domain.KindUnhandled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.Classify(tt.req))
		})
	}
}

func TestResolve(t *testing.T) {
	d := domain.DefaultDurations()

	assert.Equal(t, domain.Resolution{Action: domain.ActionSprinkle, Duration: 10000, ResponseKey: "SPRINKLING_LAWN"}, d.Resolve(domain.ResolveAction("sprinkle")))
	assert.Equal(t, domain.Resolution{Action: domain.ActionWater, Duration: 1800000, ResponseKey: "WATERING_LAWN"}, d.Resolve(domain.ResolveAction("water")))

	for _, slot := range []string{"stop", "drizzle", ""} {
		res := d.Resolve(domain.ResolveAction(slot))
		assert.Equal(t, int64(1), res.Duration, slot)
		assert.Equal(t, "STOP_MESSAGE", res.ResponseKey, slot)
	}
}

func TestShadowUpdate_Marshal(t *testing.T) {
	data, err := domain.NewShadowUpdate("relay_on_timer", 10000).Marshal()
	require.NoError(t, err)
	assert.JSONEq(t, `{"state":{"desired":{"relay_on_timer":10000}}}`, string(data))
}

func TestShadowTopics(t *testing.T) {
	topic := domain.ShadowUpdateTopic("si-03")
	assert.Equal(t, "$aws/things/si-03/shadow/update", topic)
	assert.Equal(t, "aws.things.si-03.shadow.update", domain.TopicToSubject(topic))
}

func TestRequestEnvelope_DecodesPlatformJSON(t *testing.T) {
	raw := `{
		"version": "1.0",
		"session": {"new": true, "sessionId": "amzn1.echo-api.session.1", "application": {"applicationId": "amzn1.ask.skill.1"}},
		"request": {
			"type": "IntentRequest",
			"requestId": "amzn1.echo-api.request.1",
			"timestamp": "2019-10-27T23:45:36Z",
			"locale": "en-US",
			"intent": {"name": "WaterLawnIntent", "confirmationStatus": "NONE", "slots": {"d_action": {"name": "d_action", "value": "sprinkle"}}}
		}
	}`

	var env domain.RequestEnvelope
	require.NoError(t, json.Unmarshal([]byte(raw), &env))

	assert.Equal(t, domain.KindWaterLawn, domain.Classify(env.Request))
	assert.Equal(t, "sprinkle", env.Request.SlotValue(domain.SlotAction))
	assert.Equal(t, "amzn1.ask.skill.1", env.Session.Application.ApplicationID)
	assert.Equal(t, "", domain.Request{Type: domain.RequestTypeLaunch}.SlotValue(domain.SlotAction))
}

func TestResponseBuilder(t *testing.T) {
	env := domain.NewResponse().Speak("Okay!").Build()
	data, err := json.Marshal(env)
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":"1.0","response":{"outputSpeech":{"type":"PlainText","text":"Okay!"}}}`, string(data))

	env = domain.NewResponse().Speak("Help").Reprompt("Again?").Build()
	data, err = json.Marshal(env)
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":"1.0","response":{
		"outputSpeech":{"type":"PlainText","text":"Help"},
		"reprompt":{"outputSpeech":{"type":"PlainText","text":"Again?"}},
		"shouldEndSession":false}}`, string(data))
}
