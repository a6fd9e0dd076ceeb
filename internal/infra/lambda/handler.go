package lambda

import (
	"context"
	"errors"

	awslambda "github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"go.uber.org/zap"

	"lawn-irrigation/internal/domain"
)

var ErrMissingRequestType = errors.New("request envelope has no request type")

type SkillHandler interface {
	Handle(ctx context.Context, env domain.RequestEnvelope) domain.ResponseEnvelope
}

// Handler adapts the skill to a Lambda function invoked directly by the
// voice platform.
type Handler struct {
	skill  SkillHandler
	logger *zap.Logger
}

func NewHandler(skill SkillHandler, logger *zap.Logger) *Handler {
	return &Handler{skill: skill, logger: logger}
}

func (h *Handler) Invoke(ctx context.Context, env domain.RequestEnvelope) (domain.ResponseEnvelope, error) {
	logger := h.logger
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		logger = logger.With(zap.String("aws_request_id", lc.AwsRequestID))
	}

	if env.Request.Type == "" {
		logger.Warn("rejecting invocation", zap.Error(ErrMissingRequestType))
		return domain.ResponseEnvelope{}, ErrMissingRequestType
	}

	logger.Debug("lambda invocation",
		zap.String("type", env.Request.Type),
		zap.String("intent", env.Request.IntentName()),
	)
	return h.skill.Handle(ctx, env), nil
}

// Start blocks serving invocations from the Lambda runtime.
func (h *Handler) Start() {
	awslambda.Start(h.Invoke)
}
