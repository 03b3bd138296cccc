package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/claire-namusoke/portfolio/pkg/assets"
	"github.com/claire-namusoke/portfolio/pkg/conversation"
	"github.com/claire-namusoke/portfolio/pkg/llm"
	"github.com/claire-namusoke/portfolio/pkg/prompt"
)

type fakeModel struct {
	answer string
	err    error
	block  bool
	panics bool
	calls  []llm.CompletionRequest
}

func (m *fakeModel) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	m.calls = append(m.calls, req)
	if m.panics {
		panic("boom")
	}
	if m.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return m.answer, m.err
}

type fakeSpeech struct {
	audio []byte
	err   error
	calls []string
}

func (s *fakeSpeech) Synthesize(_ context.Context, text string) ([]byte, error) {
	s.calls = append(s.calls, text)
	return s.audio, s.err
}

type fakeTranscriber struct {
	text string
	err  error
}

func (f fakeTranscriber) Transcribe(context.Context, []byte, string) (string, error) {
	return f.text, f.err
}

type staticSources struct{}

func (staticSources) Resume(context.Context) (string, error) { return "Experienced analyst.", nil }
func (staticSources) Projects(context.Context) ([]assets.Project, error) {
	return []assets.Project{{
		Title:       "Trade Dashboard",
		Description: "Visualizes shipping trends",
		Tools:       []string{"SQL", "PowerBI"},
	}}, nil
}
func (staticSources) FAQ(context.Context) ([]byte, error) {
	return []byte(`[{"q":"Why analytics?","a":"Passion for data-driven decisions."}]`), nil
}

func newTestAssistant(model LanguageModel, speech SpeechSynthesizer) *Assistant {
	assembler := prompt.NewAssembler(staticSources{}, prompt.Limits{}, zap.NewNop())
	return New(DefaultConfig(), assembler, model, speech, fakeTranscriber{text: " hello "}, zap.NewNop())
}

func countRole(log *conversation.Log, role conversation.Role) int {
	n := 0
	for _, t := range log.Turns() {
		if t.Role == role {
			n++
		}
	}
	return n
}

func TestHandleUserInputAnswersFromFAQContext(t *testing.T) {
	model := &fakeModel{answer: "Because I love data-driven decisions."}
	a := newTestAssistant(model, nil)
	log := conversation.NewLog()

	turn, ok := a.HandleUserInput(context.Background(), log, "Why did you get into analytics?", ModeText)
	require.True(t, ok)

	require.Len(t, model.calls, 1)
	req := model.calls[0]
	assert.Contains(t, req.System, "FAQ Data:\n"+prompt.FormatFAQ([]byte(`[{"q":"Why analytics?","a":"Passion for data-driven decisions."}]`)))
	assert.Contains(t, req.System, `"q": "Why analytics?"`)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, llm.RoleUser, req.Messages[0].Role)
	assert.Contains(t, req.Messages[0].Content, "Experienced analyst.")
	assert.Contains(t, req.Messages[0].Content, "Trade Dashboard: Visualizes shipping trends")
	assert.True(t, strings.HasSuffix(req.Messages[0].Content, "Question: Why did you get into analytics?"))
	assert.Equal(t, float32(0.2), req.Options.Temperature)
	assert.Equal(t, 800, req.Options.MaxTokens)

	assert.Equal(t, conversation.RoleAssistant, turn.Role)
	assert.Equal(t, "Because I love data-driven decisions.", turn.Text)
	assert.Equal(t, "Why did you get into analytics?", turn.InResponseTo)
	assert.False(t, turn.Error)
	assert.Equal(t, conversation.SpeechNotRequested, turn.Speech)

	assert.Equal(t, 2, log.Len())
	assert.Equal(t, 1, countRole(log, conversation.RoleUser))
	assert.Equal(t, 1, countRole(log, conversation.RoleAssistant))
}

func TestHandleUserInputIgnoresBlankInput(t *testing.T) {
	model := &fakeModel{answer: "x"}
	a := newTestAssistant(model, nil)
	log := conversation.NewLog()

	for _, text := range []string{"", "   ", "\n\t"} {
		_, ok := a.HandleUserInput(context.Background(), log, text, ModeText)
		assert.False(t, ok)
	}
	assert.Equal(t, 0, log.Len())
	assert.Empty(t, model.calls)
}

func TestHandleUserInputIsIdempotent(t *testing.T) {
	model := &fakeModel{answer: "first answer"}
	a := newTestAssistant(model, nil)
	log := conversation.NewLog()

	first, ok := a.HandleUserInput(context.Background(), log, "Hi?", ModeText)
	require.True(t, ok)

	model.answer = "second answer"
	second, ok := a.HandleUserInput(context.Background(), log, "Hi?", ModeText)
	require.True(t, ok)

	assert.Equal(t, first, second)
	assert.Len(t, model.calls, 1)
	assert.Equal(t, 2, log.Len())

	// A different question in between re-opens the first text.
	_, _ = a.HandleUserInput(context.Background(), log, "Other?", ModeText)
	_, _ = a.HandleUserInput(context.Background(), log, "Hi?", ModeText)
	assert.Len(t, model.calls, 3)
	assert.Equal(t, 6, log.Len())
}

func TestHandleUserInputSpeechFailureKeepsTurn(t *testing.T) {
	model := &fakeModel{answer: "spoken answer"}
	speech := &fakeSpeech{err: &llm.ServiceError{Service: "elevenlabs", Status: 500}}
	a := newTestAssistant(model, speech)
	log := conversation.NewLog()

	turn, ok := a.HandleUserInput(context.Background(), log, "Say it", ModeSpeech)
	require.True(t, ok)

	assert.Equal(t, []string{"spoken answer"}, speech.calls)
	assert.Nil(t, turn.Audio)
	assert.Empty(t, turn.Text)
	assert.Equal(t, conversation.SpeechFailed, turn.Speech)
	assert.True(t, turn.NoAudioGenerated())
	assert.Equal(t, 2, log.Len())
}

func TestHandleUserInputSpeechNotConfigured(t *testing.T) {
	a := newTestAssistant(&fakeModel{answer: "answer"}, &fakeSpeech{err: llm.ErrNotConfigured})

	turn, ok := a.HandleUserInput(context.Background(), conversation.NewLog(), "q", ModeTextAndSpeech)
	require.True(t, ok)
	assert.Equal(t, "answer", turn.Text)
	assert.Equal(t, conversation.SpeechNotConfigured, turn.Speech)
	assert.True(t, turn.NoAudioGenerated())

	nilSpeech := newTestAssistant(&fakeModel{answer: "answer"}, nil)
	turn, _ = nilSpeech.HandleUserInput(context.Background(), conversation.NewLog(), "q", ModeSpeech)
	assert.Equal(t, conversation.SpeechNotConfigured, turn.Speech)
}

func TestHandleUserInputTextAndSpeech(t *testing.T) {
	speech := &fakeSpeech{audio: []byte("RIFF....WAVE")}
	a := newTestAssistant(&fakeModel{answer: "answer"}, speech)

	turn, ok := a.HandleUserInput(context.Background(), conversation.NewLog(), "q", ModeTextAndSpeech)
	require.True(t, ok)
	assert.Equal(t, "answer", turn.Text)
	assert.Equal(t, []byte("RIFF....WAVE"), turn.Audio)
	assert.Equal(t, conversation.SpeechOK, turn.Speech)
	assert.False(t, turn.NoAudioGenerated())
}

func TestHandleUserInputTextModeSkipsSpeech(t *testing.T) {
	speech := &fakeSpeech{audio: []byte("audio")}
	a := newTestAssistant(&fakeModel{answer: "answer"}, speech)

	turn, _ := a.HandleUserInput(context.Background(), conversation.NewLog(), "q", ModeText)
	assert.Empty(t, speech.calls)
	assert.Nil(t, turn.Audio)
}

func TestHandleUserInputModelTimeout(t *testing.T) {
	model := &fakeModel{block: true}
	speech := &fakeSpeech{audio: []byte("audio")}
	a := newTestAssistant(model, speech)
	a.config.CompletionTimeout = 20 * time.Millisecond
	log := conversation.NewLog()

	var turn conversation.Turn
	var ok bool
	require.NotPanics(t, func() {
		turn, ok = a.HandleUserInput(context.Background(), log, "slow?", ModeTextAndSpeech)
	})
	require.True(t, ok)

	assert.True(t, turn.Error)
	assert.Contains(t, turn.Text, "timed out")
	assert.Empty(t, speech.calls, "no speech for an error turn")
	assert.Equal(t, "slow?", turn.InResponseTo)
	assert.Equal(t, 2, log.Len())
}

func TestHandleUserInputModelErrors(t *testing.T) {
	a := newTestAssistant(&fakeModel{err: errors.New("connection refused")}, nil)
	turn, _ := a.HandleUserInput(context.Background(), conversation.NewLog(), "q", ModeText)
	assert.True(t, turn.Error)
	assert.Equal(t, "Error contacting the language model: connection refused", turn.Text)

	a = newTestAssistant(&fakeModel{err: llm.ErrNotConfigured}, nil)
	turn, _ = a.HandleUserInput(context.Background(), conversation.NewLog(), "q", ModeText)
	assert.True(t, turn.Error)
	assert.Contains(t, turn.Text, "not configured")

	a = newTestAssistant(nil, nil)
	turn, _ = a.HandleUserInput(context.Background(), conversation.NewLog(), "q", ModeText)
	assert.Contains(t, turn.Text, "not configured")
}

func TestHandleUserInputRecoversCollaboratorPanic(t *testing.T) {
	a := newTestAssistant(&fakeModel{panics: true}, nil)
	log := conversation.NewLog()

	var turn conversation.Turn
	require.NotPanics(t, func() {
		turn, _ = a.HandleUserInput(context.Background(), log, "q", ModeText)
	})
	assert.True(t, turn.Error)
	assert.Equal(t, 2, log.Len())
}

func TestWithPersona(t *testing.T) {
	model := &fakeModel{answer: "a"}
	a := newTestAssistant(model, nil).WithPersona(prompt.PersonaConcise)

	_, _ = a.HandleUserInput(context.Background(), conversation.NewLog(), "q", ModeText)
	require.Len(t, model.calls, 1)
	assert.Contains(t, model.calls[0].System, "concisely")
}

func TestTranscribe(t *testing.T) {
	a := newTestAssistant(&fakeModel{}, nil)

	text, err := a.Transcribe(context.Background(), []byte("wav"), "speech.wav")
	require.NoError(t, err)
	assert.Equal(t, "hello", text)

	_, err = a.Transcribe(context.Background(), nil, "speech.wav")
	assert.ErrorIs(t, err, ErrEmptyAudio)

	a.transcriber = fakeTranscriber{err: errors.New("bad audio")}
	_, err = a.Transcribe(context.Background(), []byte("wav"), "speech.wav")
	assert.ErrorContains(t, err, "bad audio")

	a.transcriber = nil
	_, err = a.Transcribe(context.Background(), []byte("wav"), "speech.wav")
	assert.ErrorIs(t, err, llm.ErrNotConfigured)
}

func TestParseMode(t *testing.T) {
	cases := map[string]Mode{
		"":                ModeText,
		"text":            ModeText,
		"Text only":       ModeText,
		"speech":          ModeSpeech,
		"Speech only":     ModeSpeech,
		"text_and_speech": ModeTextAndSpeech,
		"both":            ModeTextAndSpeech,
		"Text & Speech":   ModeTextAndSpeech,
	}
	for in, want := range cases {
		got, err := ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseMode("telepathy")
	assert.Error(t, err)

	assert.True(t, ModeSpeech.WantsSpeech())
	assert.False(t, ModeSpeech.WantsText())
	assert.True(t, ModeTextAndSpeech.WantsSpeech())
	assert.False(t, ModeText.WantsSpeech())
}
