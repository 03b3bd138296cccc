// Package prompt assembles the conversational context sent to the language
// model: a capped résumé excerpt, a project digest and the FAQ document.
package prompt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/claire-namusoke/portfolio/pkg/assets"
)

const (
	DefaultResumeLimit   = 4000
	DefaultProjectsLimit = 3000
	DefaultFAQLimit      = 2000

	// separator sits between the three excerpts.
	separator = "\n\n"
)

// Sources is the read side of the asset store the assembler draws from.
type Sources interface {
	Resume(ctx context.Context) (string, error)
	Projects(ctx context.Context) ([]assets.Project, error)
	FAQ(ctx context.Context) ([]byte, error)
}

// Limits caps each excerpt, counted in characters (runes).
type Limits struct {
	Resume   int `toml:"resume_chars"`
	Projects int `toml:"projects_chars"`
	FAQ      int `toml:"faq_chars"`
}

// DefaultLimits returns the caps the site has always used.
func DefaultLimits() Limits {
	return Limits{
		Resume:   DefaultResumeLimit,
		Projects: DefaultProjectsLimit,
		FAQ:      DefaultFAQLimit,
	}
}

// Bundle is the capped context for one request. It is rebuilt every turn.
type Bundle struct {
	Resume   string
	Projects string
	FAQ      string
}

// String joins the excerpts in fixed order: résumé, projects, FAQ.
func (b Bundle) String() string {
	return strings.Join([]string{b.Resume, b.Projects, b.FAQ}, separator)
}

// Assembler builds a Bundle from the current asset contents.
type Assembler struct {
	sources Sources
	limits  Limits
	logger  *zap.Logger
}

// NewAssembler creates an Assembler. Non-positive limits take their default.
func NewAssembler(sources Sources, limits Limits, logger *zap.Logger) *Assembler {
	def := DefaultLimits()
	if limits.Resume <= 0 {
		limits.Resume = def.Resume
	}
	if limits.Projects <= 0 {
		limits.Projects = def.Projects
	}
	if limits.FAQ <= 0 {
		limits.FAQ = def.FAQ
	}

	return &Assembler{
		sources: sources,
		limits:  limits,
		logger:  logger,
	}
}

// Assemble never fails: an absent or unreadable source contributes "".
func (a *Assembler) Assemble(ctx context.Context) Bundle {
	resume, err := a.sources.Resume(ctx)
	if err != nil {
		a.logger.Warn("résumé unavailable, continuing without it", zap.Error(err))
		resume = ""
	}

	projects, err := a.sources.Projects(ctx)
	if err != nil {
		a.logger.Warn("projects unavailable, continuing without them", zap.Error(err))
		projects = nil
	}

	faq, err := a.sources.FAQ(ctx)
	if err != nil && !errors.Is(err, assets.ErrMissing) {
		a.logger.Warn("FAQ unavailable, continuing without it", zap.Error(err))
	}

	bundle := Bundle{
		Resume:   Truncate(resume, a.limits.Resume),
		Projects: Truncate(ProjectDigest(projects), a.limits.Projects),
		FAQ:      Truncate(FormatFAQ(faq), a.limits.FAQ),
	}

	a.logger.Debug("context assembled",
		zap.Int("resume_chars", len([]rune(bundle.Resume))),
		zap.Int("projects_chars", len([]rune(bundle.Projects))),
		zap.Int("faq_chars", len([]rune(bundle.FAQ))),
	)

	return bundle
}

// ProjectDigest renders one "title: description" line per project.
func ProjectDigest(projects []assets.Project) string {
	lines := make([]string, 0, len(projects))
	for _, p := range projects {
		lines = append(lines, p.Title+": "+p.Description)
	}
	return strings.Join(lines, "\n")
}

// FormatFAQ re-indents the FAQ document with two spaces, keeping key order.
// Empty or invalid input formats to "".
func FormatFAQ(raw []byte) string {
	if len(bytes.TrimSpace(raw)) == 0 {
		return ""
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(raw), "", "  "); err != nil {
		return ""
	}
	return buf.String()
}

// Truncate keeps the first limit runes of s. The cut is a hard prefix cut and
// may fall inside a word, never inside a multi-byte character.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}

	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}
