package server

import (
	"encoding/json"

	"github.com/Digital-Shane/libby/internal/skill"
)

const (
	envelopeVersion = "1.0"
	attrPending     = "pendingConfirmation"
	requestIntent   = "IntentRequest"
)

// RequestEnvelope is the subset of the Alexa request body the skill reads.
type RequestEnvelope struct {
	Version string      `json:"version"`
	Session SessionBody `json:"session"`
	Request RequestBody `json:"request"`
}

type SessionBody struct {
	New        bool                       `json:"new"`
	SessionID  string                     `json:"sessionId"`
	Attributes map[string]json.RawMessage `json:"attributes,omitempty"`
}

type RequestBody struct {
	Type      string      `json:"type"`
	RequestID string      `json:"requestId"`
	Timestamp string      `json:"timestamp,omitempty"`
	Intent    *IntentBody `json:"intent,omitempty"`
}

type IntentBody struct {
	Name  string          `json:"name"`
	Slots map[string]Slot `json:"slots,omitempty"`
}

type Slot struct {
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
}

// IntentName returns the intent for IntentRequests and the request type
// otherwise (LaunchRequest, SessionEndedRequest).
func (e RequestEnvelope) IntentName() string {
	if e.Request.Type == requestIntent && e.Request.Intent != nil {
		return e.Request.Intent.Name
	}
	return e.Request.Type
}

// SlotValues flattens the intent slots to name/value pairs.
func (e RequestEnvelope) SlotValues() map[string]string {
	if e.Request.Intent == nil || len(e.Request.Intent.Slots) == 0 {
		return nil
	}
	out := make(map[string]string, len(e.Request.Intent.Slots))
	for key, slot := range e.Request.Intent.Slots {
		name := slot.Name
		if name == "" {
			name = key
		}
		if slot.Value != "" {
			out[name] = slot.Value
		}
	}
	return out
}

// Pending decodes the confirmation echoed back in the session attributes.
// It returns nil when absent or undecodable.
func (e RequestEnvelope) Pending() *skill.PendingConfirmation {
	raw, ok := e.Session.Attributes[attrPending]
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var pending skill.PendingConfirmation
	if err := json.Unmarshal(raw, &pending); err != nil {
		return nil
	}
	return &pending
}

// ResponseEnvelope is the Alexa response body.
type ResponseEnvelope struct {
	Version           string                 `json:"version"`
	SessionAttributes map[string]interface{} `json:"sessionAttributes,omitempty"`
	Response          ResponseBody           `json:"response"`
}

type ResponseBody struct {
	OutputSpeech     *OutputSpeech `json:"outputSpeech,omitempty"`
	Card             *CardBody     `json:"card,omitempty"`
	Reprompt         *Reprompt     `json:"reprompt,omitempty"`
	ShouldEndSession bool          `json:"shouldEndSession"`
}

type OutputSpeech struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type Reprompt struct {
	OutputSpeech OutputSpeech `json:"outputSpeech"`
}

type CardBody struct {
	Type    string     `json:"type"`
	Title   string     `json:"title"`
	Content string     `json:"content,omitempty"`
	Text    string     `json:"text,omitempty"`
	Image   *CardImage `json:"image,omitempty"`
}

type CardImage struct {
	SmallImageURL string `json:"smallImageUrl"`
	LargeImageURL string `json:"largeImageUrl"`
}

func plainText(text string) OutputSpeech {
	return OutputSpeech{Type: "PlainText", Text: text}
}

// Encode converts a skill response into the Alexa wire shape.
func Encode(resp skill.Response) ResponseEnvelope {
	out := ResponseEnvelope{
		Version:  envelopeVersion,
		Response: ResponseBody{ShouldEndSession: resp.EndSession},
	}

	if resp.Speech != "" {
		speech := plainText(resp.Speech)
		out.Response.OutputSpeech = &speech
	}
	if resp.Reprompt != "" && !resp.EndSession {
		out.Response.Reprompt = &Reprompt{OutputSpeech: plainText(resp.Reprompt)}
	}
	if resp.Card != nil {
		out.Response.Card = encodeCard(*resp.Card)
	}
	if resp.Confirmation != nil && !resp.EndSession {
		out.SessionAttributes = map[string]interface{}{attrPending: resp.Confirmation}
	}
	return out
}

func encodeCard(c skill.Card) *CardBody {
	if c.ImageURL == "" {
		return &CardBody{Type: "Simple", Title: c.Title, Content: c.Text}
	}
	return &CardBody{
		Type:  "Standard",
		Title: c.Title,
		Text:  c.Text,
		Image: &CardImage{SmallImageURL: c.ImageURL, LargeImageURL: c.ImageURL},
	}
}
