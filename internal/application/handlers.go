package application

import (
	"context"

	"go.uber.org/zap"

	"lawn-irrigation/internal/domain"
	"lawn-irrigation/internal/i18n"
)

func (s *Skill) handleWaterLawn(ctx context.Context, req domain.Request, loc *i18n.Localizer, logger *zap.Logger) domain.ResponseEnvelope {
	slot := req.SlotValue(domain.SlotAction)
	res := s.durations.Resolve(domain.ResolveAction(slot))

	logger.Info("resolved watering action",
		zap.String("slot", slot),
		zap.String("action", string(res.Action)),
		zap.Int64("duration", res.Duration),
	)

	return s.apply(ctx, res, loc)
}

func (s *Skill) handleLaunch(ctx context.Context, loc *i18n.Localizer, logger *zap.Logger) domain.ResponseEnvelope {
	if s.launch == "" {
		return domain.NewResponse().
			Speak(loc.T(domain.KeyWelcome)).
			Reprompt(loc.T(domain.KeyHelpReprompt)).
			Build()
	}

	res := s.durations.Resolve(s.launch)
	logger.Info("launch runs default action",
		zap.String("action", string(res.Action)),
		zap.Int64("duration", res.Duration),
	)
	return s.apply(ctx, res, loc)
}

// handleStop turns the relay off regardless of what was running.
func (s *Skill) handleStop(ctx context.Context, loc *i18n.Localizer) domain.ResponseEnvelope {
	return s.apply(ctx, s.durations.Resolve(domain.ActionStop), loc)
}

func (s *Skill) apply(ctx context.Context, res domain.Resolution, loc *i18n.Localizer) domain.ResponseEnvelope {
	s.shadow.Update(ctx, s.controlPoint, res.Duration)
	return domain.NewResponse().Speak(loc.T(res.ResponseKey)).Build()
}

func handleHelp(loc *i18n.Localizer) domain.ResponseEnvelope {
	return domain.NewResponse().
		Speak(loc.T(domain.KeyHelp)).
		Reprompt(loc.T(domain.KeyHelpReprompt)).
		Build()
}

func handleFallback(loc *i18n.Localizer) domain.ResponseEnvelope {
	return domain.NewResponse().
		Speak(loc.T(domain.KeyFallback)).
		Reprompt(loc.T(domain.KeyFallbackPrompt)).
		Build()
}

func handleSessionEnded(req domain.Request, logger *zap.Logger) domain.ResponseEnvelope {
	fields := []zap.Field{zap.String("reason", req.Reason)}
	if req.Error != nil {
		fields = append(fields,
			zap.String("error_type", req.Error.Type),
			zap.String("error_message", req.Error.Message),
		)
	}
	logger.Info("session ended", fields...)
	return domain.NewResponse().Build()
}
