package lambda

import (
	"context"
	"testing"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"lawn-irrigation/internal/domain"
)

type fakeSkill struct {
	calls int
	last  domain.RequestEnvelope
}

func (f *fakeSkill) Handle(_ context.Context, env domain.RequestEnvelope) domain.ResponseEnvelope {
	f.calls++
	f.last = env
	return domain.NewResponse().Speak("Okay!").Build()
}

func TestHandler_Invoke(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	skill := &fakeSkill{}
	h := NewHandler(skill, zap.New(core))

	ctx := lambdacontext.NewContext(context.Background(), &lambdacontext.LambdaContext{AwsRequestID: "req-42"})
	env := domain.RequestEnvelope{Request: domain.Request{
		Type:   domain.RequestTypeIntent,
		Intent: &domain.Intent{Name: domain.IntentStop},
	}}

	resp, err := h.Invoke(ctx, env)
	require.NoError(t, err)

	assert.Equal(t, "Okay!", resp.Speech())
	assert.Equal(t, 1, skill.calls)
	assert.Equal(t, domain.IntentStop, skill.last.Request.IntentName())

	entries := logs.FilterMessage("lambda invocation").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "req-42", entries[0].ContextMap()["aws_request_id"])
}

func TestHandler_InvokeRejectsEmptyEnvelope(t *testing.T) {
	skill := &fakeSkill{}
	h := NewHandler(skill, zap.NewNop())

	_, err := h.Invoke(context.Background(), domain.RequestEnvelope{})

	assert.ErrorIs(t, err, ErrMissingRequestType)
	assert.Zero(t, skill.calls)
}
