package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/claire-namusoke/portfolio/pkg/assistant"
	"github.com/claire-namusoke/portfolio/pkg/conversation"
	"github.com/claire-namusoke/portfolio/pkg/logger"
	"github.com/claire-namusoke/portfolio/pkg/session"
)

// SessionCookie carries the visitor's session id.
const SessionCookie = "portfolio_session"

const (
	noticeSpeechNotConfigured = "Speech is not configured, so no audio was generated for the last response."
	noticeSpeechFailed        = "No audio was generated for the last response. Please check the speech service settings or try again."
)

// ChatRequest is a typed question.
type ChatRequest struct {
	Text string `json:"text"`
	Mode string `json:"mode,omitempty"`

	// Page selects the assistant's register: "assistant" answers concisely,
	// anything else (the floating widget, the voice page) answers warmly.
	Page string `json:"page,omitempty"`
}

// ChatResponse carries the assistant turn for one question.
type ChatResponse struct {
	Question string            `json:"question,omitempty"`
	Turn     conversation.Turn `json:"turn"`
	Notice   string            `json:"notice,omitempty"`
}

// ChatState is the visitor's conversation so far.
type ChatState struct {
	Session string              `json:"session"`
	Open    bool                `json:"open"`
	Turns   []conversation.Turn `json:"turns"`
}

// TranscribeResponse is the text recognized from a recording.
type TranscribeResponse struct {
	Text string `json:"text"`
}

func (s *Server) handleCreateSession(c *fiber.Ctx) error {
	if prev, ok := s.lookupSession(c); ok {
		s.sessions.Dispose(c.UserContext(), prev.ID)
	}

	sess := s.sessions.Create()
	s.setSessionCookie(c, sess.ID)
	return c.Status(fiber.StatusCreated).JSON(ChatState{
		Session: sess.ID,
		Open:    sess.ChatOpen(),
		Turns:   sess.Log.Turns(),
	})
}

func (s *Server) handleDisposeSession(c *fiber.Ctx) error {
	if sess, ok := s.lookupSession(c); ok {
		s.sessions.Dispose(c.UserContext(), sess.ID)
	}
	c.ClearCookie(SessionCookie)
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleGetChat(c *fiber.Ctx) error {
	sess := s.session(c)
	return c.JSON(ChatState{
		Session: sess.ID,
		Open:    sess.ChatOpen(),
		Turns:   sess.Log.Turns(),
	})
}

func (s *Server) handleChat(c *fiber.Ctx) error {
	var req ChatRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		s.logger.Error("failed to parse chat request", zap.Error(err))
		return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
	}

	mode, err := assistant.ParseMode(req.Mode)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	return s.ask(c, s.session(c), req.Text, mode, req.Page)
}

func (s *Server) handleClearChat(c *fiber.Ctx) error {
	sess := s.session(c)

	sess.Lock()
	defer sess.Unlock()

	s.archiveSession(c.UserContext(), sess)
	sess.Log.Clear()
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleTogglePanel(c *fiber.Ctx) error {
	sess := s.session(c)
	return c.JSON(map[string]bool{"open": sess.ToggleChat()})
}

func (s *Server) handleTranscribe(c *fiber.Ctx) error {
	text, err := s.transcribeUpload(c)
	if err != nil {
		return s.transcribeError(c, err)
	}
	return c.JSON(TranscribeResponse{Text: text})
}

func (s *Server) handleVoice(c *fiber.Ctx) error {
	mode, err := assistant.ParseMode(c.FormValue("mode"))
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	text, err := s.transcribeUpload(c)
	if err != nil {
		return s.transcribeError(c, err)
	}

	return s.ask(c, s.session(c), text, mode, c.FormValue("page"))
}

// ask runs one question under the session's turn lock. Collaborator failures
// arrive as error turns, so this never answers 5xx for them.
func (s *Server) ask(c *fiber.Ctx, sess *session.Session, text string, mode assistant.Mode, page string) error {
	asst := s.assistant
	if page == "assistant" {
		if !s.config.Pages.Assistant {
			return errorJSON(c, fiber.StatusNotFound, "the assistant page is disabled")
		}
		asst = s.concise
	}

	sess.Lock()
	turn, ok := asst.HandleUserInput(c.UserContext(), sess.Log, text, mode)
	sess.Unlock()

	if !ok {
		return c.SendStatus(fiber.StatusNoContent)
	}

	s.logger.Debug("answered question",
		zap.String("session", sess.ID),
		zap.String("mode", string(mode)),
		zap.String("question", logger.Preview(text, 50)),
		zap.Bool("error", turn.Error),
		zap.String("speech", string(turn.Speech)),
	)

	resp := ChatResponse{Question: text, Turn: turn}
	if turn.NoAudioGenerated() {
		resp.Notice = noticeSpeechFailed
		if turn.Speech == conversation.SpeechNotConfigured {
			resp.Notice = noticeSpeechNotConfigured
		}
	}
	return c.JSON(resp)
}

func (s *Server) transcribeUpload(c *fiber.Ctx) (string, error) {
	header, err := c.FormFile("audio")
	if err != nil {
		return "", errUploadMissing
	}

	audio, err := readUpload(header)
	if err != nil {
		return "", err
	}

	return s.assistant.Transcribe(c.UserContext(), audio, header.Filename)
}

var errUploadMissing = errors.New("missing audio upload")

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}

func (s *Server) transcribeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, errUploadMissing), errors.Is(err, assistant.ErrEmptyAudio):
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	case isNotConfigured(err):
		return errorJSON(c, fiber.StatusServiceUnavailable, "speech recognition is not configured")
	default:
		s.logger.Error("transcription failed", zap.Error(err))
		return errorJSON(c, fiber.StatusBadGateway, "Error during transcription: "+err.Error())
	}
}

// session returns the visitor's session, creating one when the cookie is
// absent or stale.
func (s *Server) session(c *fiber.Ctx) *session.Session {
	if sess, ok := s.lookupSession(c); ok {
		return sess
	}

	sess := s.sessions.Create()
	s.setSessionCookie(c, sess.ID)
	return sess
}

func (s *Server) lookupSession(c *fiber.Ctx) (*session.Session, bool) {
	id := c.Cookies(SessionCookie)
	if id == "" {
		return nil, false
	}
	return s.sessions.Get(id)
}

func (s *Server) setSessionCookie(c *fiber.Ctx, id string) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
