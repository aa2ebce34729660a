package skill

import (
	"errors"

	"github.com/Digital-Shane/libby/internal/journal"
	"github.com/Digital-Shane/libby/internal/media"
	"github.com/Digital-Shane/libby/internal/provider"
	"github.com/Digital-Shane/libby/internal/responses"
)

// failure converts a handler error into the spoken reply that ends the turn.
func (s *Skill) failure(req Request, err error) (Response, journal.Outcome) {
	var (
		validation *ValidationError
		state      *SessionStateError
		cfgErr     *provider.ConfigurationError
	)

	switch {
	case errors.As(err, &validation):
		scenario := responses.NoMovieSlot
		if validation.Kind == media.Shows {
			scenario = responses.NoShowSlot
		}
		return Response{Speech: s.render(scenario, responses.Data{Kind: validation.Kind.Noun()}), EndSession: true}, journal.OutcomeInvalid

	case errors.As(err, &state):
		return Response{Speech: s.render(responses.PleaseRepeat, responses.Data{}), EndSession: true}, journal.OutcomeInvalid

	case errors.As(err, &cfgErr):
		return s.apology(cfgErr.Kind), journal.OutcomeFailed

	default:
		kind, _ := turnSubject(req)
		return s.apology(kind), journal.OutcomeFailed
	}
}

func (s *Skill) apology(kind media.Kind) Response {
	data := responses.Data{}
	if kind != "" {
		data.Kind = kind.Noun()
	}
	return Response{Speech: s.render(responses.Apology, data), EndSession: true}
}
