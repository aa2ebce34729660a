package skill

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Digital-Shane/libby/internal/media"
)

var trailingYearRe = regexp.MustCompile(`\s+((?:19|20)\d{2})$`)

// ParseUtterance turns typed text such as "find movie heat 1995",
// "add show the expanse", "yes" or "help" into a request, standing in for
// the host's intent model when running locally.
func ParseUtterance(text string) (Request, error) {
	text = strings.Join(strings.Fields(text), " ")
	lower := strings.ToLower(text)

	switch lower {
	case "":
		return Request{Intent: IntentLaunch}, nil
	case "yes", "yeah", "yep", "sure", "ok", "okay":
		return Request{Intent: IntentYes}, nil
	case "no", "nope", "nah", "next":
		return Request{Intent: IntentNo}, nil
	case "help", "?":
		return Request{Intent: IntentHelp}, nil
	case "cancel", "never mind":
		return Request{Intent: IntentCancel}, nil
	case "stop", "quit", "exit", "bye":
		return Request{Intent: IntentStop}, nil
	}

	words := strings.SplitN(text, " ", 3)
	if len(words) < 2 {
		return Request{}, fmt.Errorf("cannot understand %q", text)
	}

	var add bool
	switch strings.ToLower(words[0]) {
	case "find", "check", "is", "search":
	case "add", "download", "get":
		add = true
	default:
		return Request{}, fmt.Errorf("cannot understand %q: start with find or add", text)
	}

	kind, err := media.ParseKind(words[1])
	if err != nil {
		return Request{}, fmt.Errorf("say movie or show after %q", words[0])
	}

	title := ""
	if len(words) == 3 {
		title = words[2]
	}
	return IntentRequest(kind, add, title), nil
}

// IntentRequest builds a find or add request for kind. A trailing year on
// a movie title becomes the release date slot.
func IntentRequest(kind media.Kind, add bool, title string) Request {
	title = strings.TrimSpace(title)
	slots := map[string]string{}

	if kind == media.Movies {
		if m := trailingYearRe.FindStringSubmatch(title); m != nil {
			slots[SlotReleaseDate] = m[1]
			title = strings.TrimSpace(title[:len(title)-len(m[0])])
		}
	}
	if title != "" {
		slots[titleSlot(kind)] = title
	}

	var intent string
	switch {
	case kind == media.Shows && add:
		intent = IntentAddShow
	case kind == media.Shows:
		intent = IntentFindShow
	case add:
		intent = IntentAddMovie
	default:
		intent = IntentFindMovie
	}
	return Request{Intent: intent, Slots: slots}
}
