package skill

import (
	"context"
	"fmt"
	"strings"

	"github.com/Digital-Shane/libby/internal/journal"
	"github.com/Digital-Shane/libby/internal/media"
	"github.com/Digital-Shane/libby/internal/provider"
	"github.com/Digital-Shane/libby/internal/responses"
)

func titleSlot(kind media.Kind) string {
	if kind == media.Shows {
		return SlotShowName
	}
	return SlotMovieName
}

func requireTitle(req Request, kind media.Kind) (string, error) {
	slot := titleSlot(kind)
	title := req.Slot(slot)
	if title == "" {
		return "", &ValidationError{Kind: kind, Slot: slot}
	}
	return title, nil
}

// searchQuery appends the spoken release year to movie searches.
func searchQuery(req Request, kind media.Kind, title string) string {
	if kind == media.Movies {
		return media.BuildQuery(title, req.Slot(SlotReleaseDate))
	}
	return title
}

// find checks the library first and only searches the catalog on a miss.
func (s *Skill) find(ctx context.Context, req Request, kind media.Kind) (Response, journal.Outcome, error) {
	title, err := requireTitle(req, kind)
	if err != nil {
		return Response{}, journal.OutcomeInvalid, err
	}

	client, err := s.providers.Resolve(kind)
	if err != nil {
		return Response{}, journal.OutcomeFailed, err
	}

	matches, err := client.List(ctx, title)
	if err != nil {
		return Response{}, journal.OutcomeFailed, fmt.Errorf("failed to list %s: %w", kind, err)
	}

	if len(matches) > 0 {
		match := matches[0]
		speech := s.render(responses.AlreadyWanted, s.resultData(kind, match))
		return Response{
			Speech:     speech,
			Card:       s.card(ctx, kind, match, speech),
			EndSession: true,
		}, journal.OutcomeAnswered, nil
	}

	lead := s.render(responses.NotQueued, spokenData(kind, title))
	return s.offer(ctx, client, kind, title, searchQuery(req, kind, title), lead, responses.NoResults)
}

// addDirect skips the library check and goes straight to the catalog.
func (s *Skill) addDirect(ctx context.Context, req Request, kind media.Kind) (Response, journal.Outcome, error) {
	title, err := requireTitle(req, kind)
	if err != nil {
		return Response{}, journal.OutcomeInvalid, err
	}

	client, err := s.providers.Resolve(kind)
	if err != nil {
		return Response{}, journal.OutcomeFailed, err
	}

	return s.offer(ctx, client, kind, title, searchQuery(req, kind, title), "", responses.AddNotFound)
}

// offer searches for query and prompts to add the first result.
func (s *Skill) offer(ctx context.Context, client provider.Client, kind media.Kind, title, query, lead string, empty responses.Scenario) (Response, journal.Outcome, error) {
	results, err := client.Search(ctx, query)
	if err != nil {
		return Response{}, journal.OutcomeFailed, fmt.Errorf("failed to search %s for %q: %w", kind, query, err)
	}

	if len(results) == 0 {
		return Response{
			Speech:     responses.Join(lead, s.render(empty, spokenData(kind, title))),
			EndSession: true,
		}, journal.OutcomeAnswered, nil
	}

	pending := BuildReprompt(results, kind)
	candidate := pending.Current()
	prompt := s.render(responses.AddPrompt, s.resultData(kind, candidate))

	return Response{
		Speech:       responses.Join(lead, prompt),
		Reprompt:     prompt,
		Card:         s.card(ctx, kind, candidate, prompt),
		Confirmation: &pending,
	}, journal.OutcomePrompted, nil
}

// confirm adds the offered candidate.
func (s *Skill) confirm(ctx context.Context, req Request) (Response, journal.Outcome, error) {
	pending := req.Confirmation
	if err := pending.Validate(); err != nil {
		return Response{}, journal.OutcomeInvalid, err
	}

	client, err := s.providers.Resolve(pending.ProviderKind)
	if err != nil {
		return Response{}, journal.OutcomeFailed, err
	}

	candidate := pending.Current()
	outcome, err := client.Add(ctx, candidate)
	if err != nil {
		return Response{}, journal.OutcomeFailed, fmt.Errorf("failed to add %q: %w", candidate.Title, err)
	}
	if outcome != nil {
		s.logger.Debug("added to library", "provider", client.Name(), "id", outcome.ID, "path", outcome.Path)
	}

	speech := s.render(responses.Added, s.resultData(pending.ProviderKind, candidate))
	return Response{
		Speech:     speech,
		Card:       s.card(ctx, pending.ProviderKind, candidate, speech),
		EndSession: true,
	}, journal.OutcomeAdded, nil
}

// decline offers the next candidate, or gives up when none remain.
func (s *Skill) decline(ctx context.Context, req Request) (Response, journal.Outcome, error) {
	pending := req.Confirmation
	if err := pending.Validate(); err != nil {
		return Response{}, journal.OutcomeInvalid, err
	}

	next, ok := pending.Advance()
	if !ok {
		return Response{
			Speech:     s.render(responses.NoMoreCandidates, responses.Data{Kind: pending.ProviderKind.Noun()}),
			EndSession: true,
		}, journal.OutcomeDeclined, nil
	}

	candidate := next.Current()
	prompt := s.render(responses.NextPrompt, s.resultData(next.ProviderKind, candidate))
	return Response{
		Speech:       prompt,
		Reprompt:     prompt,
		Card:         s.card(ctx, next.ProviderKind, candidate, prompt),
		Confirmation: &next,
	}, journal.OutcomePrompted, nil
}

var possessive = strings.NewReplacer("'s", "s", "’s", "s")

// spokenTitle drops possessive apostrophes from show titles so speech
// synthesis reads "Bobs Burgers" naturally.
func spokenTitle(kind media.Kind, title string) string {
	if kind == media.Shows {
		return possessive.Replace(title)
	}
	return title
}

func (s *Skill) resultData(kind media.Kind, r media.MediaResult) responses.Data {
	return responses.Data{
		Title: spokenTitle(kind, r.Title),
		Year:  r.YearString(),
		Kind:  kind.Noun(),
	}
}

func spokenData(kind media.Kind, title string) responses.Data {
	return responses.Data{Query: responses.Titleize(title), Kind: kind.Noun()}
}

// card builds the display card. Shows are titled without a year.
func (s *Skill) card(ctx context.Context, kind media.Kind, r media.MediaResult, text string) *Card {
	data := responses.Data{Title: r.Title}
	if kind == media.Movies {
		data.Year = r.YearString()
	}

	c := &Card{
		Title: s.render(responses.CardTitle, data),
		Text:  text,
	}
	if s.artwork != nil {
		c.ImageURL = s.artwork.Find(ctx, kind, r)
	}
	return c
}
