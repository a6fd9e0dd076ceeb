package application

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lawn-irrigation/internal/domain"
	"lawn-irrigation/internal/i18n"
	"lawn-irrigation/internal/telemetry"
)

// ErrNoHandler is returned for requests outside the kinds the skill answers.
var ErrNoHandler = errors.New("no handler for request")

// LaunchNone makes a launch request speak the welcome prompt without
// touching the device.
const LaunchNone = "none"

type SkillConfig struct {
	ControlPoint string
	Durations    domain.Durations
	// LaunchAction is what opening the skill does: an action name
	// (sprinkle, water, stop) or LaunchNone.
	LaunchAction string
}

type Skill struct {
	shadow       ShadowUpdater
	catalog      *i18n.Catalog
	controlPoint string
	durations    domain.Durations
	launch       domain.Action
	logger       *zap.Logger
}

func NewSkill(cfg SkillConfig, shadow ShadowUpdater, catalog *i18n.Catalog, logger *zap.Logger) (*Skill, error) {
	// Without a default bundle unknown locales would speak raw template keys.
	if !catalog.HasLocale(catalog.DefaultLocale()) {
		return nil, fmt.Errorf("default locale %q: no bundle loaded (have %v)", catalog.DefaultLocale(), catalog.Locales())
	}

	s := &Skill{
		shadow:       shadow,
		catalog:      catalog,
		controlPoint: cfg.ControlPoint,
		durations:    cfg.Durations,
		logger:       logger,
	}

	if s.controlPoint == "" {
		s.controlPoint = domain.DefaultControlPoint
	}

	switch cfg.LaunchAction {
	case LaunchNone:
	case "":
		s.launch = domain.ActionWater
	default:
		a, err := domain.ParseAction(cfg.LaunchAction)
		if err != nil {
			return nil, fmt.Errorf("launch action: %w", err)
		}
		s.launch = a
	}

	return s, nil
}

// Handle answers one voice request. It always returns a response: handler
// errors and panics are turned into the localized error message.
func (s *Skill) Handle(ctx context.Context, env domain.RequestEnvelope) (resp domain.ResponseEnvelope) {
	req := env.Request
	kind := domain.Classify(req)
	loc := s.catalog.For(req.Locale)

	logger := s.logger.With(
		zap.String("request_id", requestID(req)),
		zap.String("kind", string(kind)),
		zap.String("locale", req.Locale),
	)
	telemetry.RequestsTotal.WithLabelValues(string(kind)).Inc()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("handler panicked",
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
			resp = s.handleError(kind, loc)
		}
	}()

	out, err := s.dispatch(ctx, kind, req, loc, logger)
	if err != nil {
		logger.Error("handling request", zap.Error(err), zap.Stack("stack"))
		return s.handleError(kind, loc)
	}
	return out
}

func (s *Skill) dispatch(ctx context.Context, kind domain.RequestKind, req domain.Request, loc *i18n.Localizer, logger *zap.Logger) (domain.ResponseEnvelope, error) {
	switch kind {
	case domain.KindLaunch:
		return s.handleLaunch(ctx, loc, logger), nil
	case domain.KindWaterLawn:
		return s.handleWaterLawn(ctx, req, loc, logger), nil
	case domain.KindHelp:
		return handleHelp(loc), nil
	case domain.KindFallback:
		return handleFallback(loc), nil
	case domain.KindStop:
		return s.handleStop(ctx, loc), nil
	case domain.KindSessionEnded:
		return handleSessionEnded(req, logger), nil
	case domain.KindUnhandled:
		return domain.ResponseEnvelope{}, fmt.Errorf("%w: type=%q intent=%q", ErrNoHandler, req.Type, req.IntentName())
	default:
		return domain.ResponseEnvelope{}, fmt.Errorf("%w: kind %q", ErrNoHandler, kind)
	}
}

func (s *Skill) handleError(kind domain.RequestKind, loc *i18n.Localizer) domain.ResponseEnvelope {
	telemetry.HandlerErrorsTotal.WithLabelValues(string(kind)).Inc()
	msg := loc.T(domain.KeyError)
	return domain.NewResponse().Speak(msg).Reprompt(msg).Build()
}

func requestID(req domain.Request) string {
	if req.RequestID != "" {
		return req.RequestID
	}
	return uuid.NewString()
}
