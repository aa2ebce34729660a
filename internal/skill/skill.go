// Package skill answers voice requests about the movie and show download
// queues. Each call to Handle is one conversational turn; the pending
// confirmation travels in and out of every call so the host decides where
// it is stored between turns.
package skill

import (
	"context"
	"strings"

	"github.com/Digital-Shane/libby/internal/journal"
	"github.com/Digital-Shane/libby/internal/media"
	"github.com/Digital-Shane/libby/internal/provider"
	"github.com/Digital-Shane/libby/internal/responses"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Intent names delivered by the host.
const (
	IntentLaunch       = "LaunchRequest"
	IntentSessionEnded = "SessionEndedRequest"
	IntentFindMovie    = "FindMovie"
	IntentAddMovie     = "AddMovie"
	IntentFindShow     = "FindShow"
	IntentAddShow      = "AddShow"
	IntentYes          = "AMAZON.YesIntent"
	IntentNo           = "AMAZON.NoIntent"
	IntentHelp         = "AMAZON.HelpIntent"
	IntentCancel       = "AMAZON.CancelIntent"
	IntentStop         = "AMAZON.StopIntent"
)

// Slot names delivered by the host.
const (
	SlotMovieName   = "movieName"
	SlotShowName    = "showName"
	SlotReleaseDate = "releaseDate"
)

// Request is one host-delivered turn.
type Request struct {
	SessionID    string
	Source       string
	Intent       string
	Slots        map[string]string
	Confirmation *PendingConfirmation
	NewSession   bool
}

// Slot returns the trimmed value of a slot.
func (r Request) Slot(name string) string {
	return strings.TrimSpace(r.Slots[name])
}

// Card is the visual companion to the speech. A card with an ImageURL is
// rendered as a standard card, otherwise as a simple one.
type Card struct {
	Title    string `json:"title"`
	Text     string `json:"text"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// Response is the single reply produced for every turn.
type Response struct {
	Speech       string               `json:"speech"`
	Reprompt     string               `json:"reprompt,omitempty"`
	Card         *Card                `json:"card,omitempty"`
	Confirmation *PendingConfirmation `json:"confirmation,omitempty"`
	EndSession   bool                 `json:"endSession"`
}

// Providers resolves the library client for a media kind.
type Providers interface {
	Resolve(kind media.Kind) (provider.Client, error)
}

// Artwork finds a poster for a result. It never fails; "" means none.
type Artwork interface {
	Find(ctx context.Context, kind media.Kind, result media.MediaResult) string
}

// Skill answers voice turns about the movie and show libraries.
type Skill struct {
	providers Providers
	artwork   Artwork
	responses *responses.Table
	logger    *log.Logger
	journal   *journal.Journal
}

// Option configures a Skill during construction.
type Option func(*Skill)

// WithArtwork enables poster lookups for cards.
func WithArtwork(a Artwork) Option {
	return func(s *Skill) { s.artwork = a }
}

// WithResponses replaces the built-in response table.
func WithResponses(t *responses.Table) Option {
	return func(s *Skill) {
		if t != nil {
			s.responses = t
		}
	}
}

// WithLogger sets the logger used for turn and failure logs.
func WithLogger(l *log.Logger) Option {
	return func(s *Skill) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithJournal records every turn in j.
func WithJournal(j *journal.Journal) Option {
	return func(s *Skill) { s.journal = j }
}

// New creates a skill backed by providers.
func New(providers Providers, opts ...Option) *Skill {
	s := &Skill{
		providers: providers,
		responses: responses.Default(),
		logger:    log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle runs one turn. Errors never escape: each is turned into speech and
// ends the session.
func (s *Skill) Handle(ctx context.Context, req Request) Response {
	resp, outcome, err := s.dispatch(ctx, req)
	if err != nil {
		resp, outcome = s.failure(req, err)
	}
	s.record(req, resp, outcome, err)
	return resp
}

func (s *Skill) dispatch(ctx context.Context, req Request) (Response, journal.Outcome, error) {
	switch req.Intent {
	case IntentLaunch:
		return s.launch(), journal.OutcomeAnswered, nil
	case IntentHelp:
		return s.help(req), journal.OutcomeAnswered, nil
	case IntentCancel, IntentStop:
		return Response{Speech: s.render(responses.Cancel, responses.Data{}), EndSession: true}, journal.OutcomeDeclined, nil
	case IntentSessionEnded:
		return Response{EndSession: true}, journal.OutcomeAnswered, nil
	case IntentFindMovie:
		return s.find(ctx, req, media.Movies)
	case IntentFindShow:
		return s.find(ctx, req, media.Shows)
	case IntentAddMovie:
		return s.addDirect(ctx, req, media.Movies)
	case IntentAddShow:
		return s.addDirect(ctx, req, media.Shows)
	case IntentYes:
		return s.confirm(ctx, req)
	case IntentNo:
		return s.decline(ctx, req)
	default:
		s.logger.Warn("unhandled intent", "intent", req.Intent)
		return s.help(req), journal.OutcomeAnswered, nil
	}
}

func (s *Skill) launch() Response {
	help := s.render(responses.Help, responses.Data{})
	return Response{
		Speech:   s.render(responses.Welcome, responses.Data{}),
		Reprompt: help,
	}
}

// help keeps any pending offer alive so a yes or no can still follow.
func (s *Skill) help(req Request) Response {
	speech := s.render(responses.Help, responses.Data{})
	return Response{
		Speech:       speech,
		Reprompt:     speech,
		Confirmation: req.Confirmation,
	}
}

func (s *Skill) render(scenario responses.Scenario, data responses.Data) string {
	return s.responses.Render(scenario, data)
}

func (s *Skill) record(req Request, resp Response, outcome journal.Outcome, err error) {
	kind, title := turnSubject(req)

	fields := []interface{}{"intent", req.Intent, "outcome", outcome}
	if kind != "" {
		fields = append(fields, "kind", kind)
	}
	if title != "" {
		fields = append(fields, "title", title)
	}
	if err != nil {
		s.logger.Error("turn failed", append(fields, "err", err)...)
	} else {
		s.logger.Info("turn handled", fields...)
	}

	if !s.journal.Enabled() {
		return
	}

	turn := journal.Turn{
		Intent:  req.Intent,
		Slots:   req.Slots,
		Kind:    string(kind),
		Title:   title,
		Speech:  resp.Speech,
		Outcome: outcome,
	}
	if err != nil {
		turn.Error = err.Error()
	}
	// A turn with no conversation id is journaled on its own.
	id, end := req.SessionID, resp.EndSession
	if id == "" {
		id, end = "turn-"+uuid.NewString(), true
	}
	s.journal.Record(id, req.Source, turn)

	if end {
		if err := s.journal.End(id); err != nil {
			s.logger.Warn("failed to write journal session", "session", id, "err", err)
		}
	}
}

// turnSubject names the media kind and title a turn was about, for logs.
func turnSubject(req Request) (media.Kind, string) {
	switch req.Intent {
	case IntentFindMovie, IntentAddMovie:
		return media.Movies, req.Slot(SlotMovieName)
	case IntentFindShow, IntentAddShow:
		return media.Shows, req.Slot(SlotShowName)
	case IntentYes, IntentNo:
		if req.Confirmation.Validate() == nil {
			return req.Confirmation.ProviderKind, req.Confirmation.Current().Title
		}
	}
	return "", ""
}
