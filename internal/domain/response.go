package domain

const ResponseVersion = "1.0"

const SpeechTypePlainText = "PlainText"

type ResponseEnvelope struct {
	Version  string   `json:"version"`
	Response Response `json:"response"`
}

type Response struct {
	OutputSpeech     *OutputSpeech `json:"outputSpeech,omitempty"`
	Reprompt         *Reprompt     `json:"reprompt,omitempty"`
	ShouldEndSession *bool         `json:"shouldEndSession,omitempty"`
}

type OutputSpeech struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type Reprompt struct {
	OutputSpeech OutputSpeech `json:"outputSpeech"`
}

// ResponseBuilder assembles a response envelope. A reprompt keeps the
// session open; without one the platform decides.
type ResponseBuilder struct {
	resp Response
}

func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{}
}

func (b *ResponseBuilder) Speak(text string) *ResponseBuilder {
	b.resp.OutputSpeech = &OutputSpeech{Type: SpeechTypePlainText, Text: text}
	return b
}

func (b *ResponseBuilder) Reprompt(text string) *ResponseBuilder {
	b.resp.Reprompt = &Reprompt{OutputSpeech: OutputSpeech{Type: SpeechTypePlainText, Text: text}}
	open := false
	b.resp.ShouldEndSession = &open
	return b
}

func (b *ResponseBuilder) Build() ResponseEnvelope {
	return ResponseEnvelope{Version: ResponseVersion, Response: b.resp}
}

// Speech returns the spoken text, or "" for silent responses.
func (e ResponseEnvelope) Speech() string {
	if e.Response.OutputSpeech == nil {
		return ""
	}
	return e.Response.OutputSpeech.Text
}

func (e ResponseEnvelope) RepromptText() string {
	if e.Response.Reprompt == nil {
		return ""
	}
	return e.Response.Reprompt.OutputSpeech.Text
}
