package server

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/claire-namusoke/portfolio/pkg/assets"
	"github.com/claire-namusoke/portfolio/pkg/config"
)

// Page is one entry in the site navigation.
type Page struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// AboutResponse is the About page content.
type AboutResponse struct {
	config.OwnerConfig
	ProfileURL string `json:"profile_url,omitempty"`
	CVURL      string `json:"cv_url,omitempty"`
}

// ProjectView is a project as shown on the Projects page. Descriptions are
// context for the assistant only.
type ProjectView struct {
	Title string   `json:"title"`
	Link  string   `json:"link,omitempty"`
	Tools []string `json:"tools,omitempty"`
}

// ProjectsResponse is the Projects page content.
type ProjectsResponse struct {
	Projects []ProjectView `json:"projects"`
	Message  string        `json:"message,omitempty"`
}

func (s *Server) handlePages(c *fiber.Ctx) error {
	pages := []Page{
		{ID: "about", Title: "About"},
		{ID: "projects", Title: "Projects"},
	}
	if s.config.Pages.Assistant {
		pages = append(pages, Page{ID: "assistant", Title: "AI Assistant"})
	}
	if s.config.Pages.Voice {
		pages = append(pages, Page{ID: "voice", Title: "Voice Assistant"})
	}
	return c.JSON(pages)
}

func (s *Server) handleAbout(c *fiber.Ctx) error {
	resp := AboutResponse{OwnerConfig: s.config.Owner}

	if s.assetExists(c, s.assets.Profile) {
		resp.ProfileURL = "/assets/profile"
	}
	if s.assetExists(c, s.assets.CV) {
		resp.CVURL = "/assets/cv"
	}

	return c.JSON(resp)
}

func (s *Server) handleProjects(c *fiber.Ctx) error {
	projects, err := s.assets.Projects(c.UserContext())
	if err != nil {
		s.logger.Error("failed to load projects", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "failed to load projects")
	}

	resp := ProjectsResponse{Projects: make([]ProjectView, 0, len(projects))}
	for _, p := range projects {
		resp.Projects = append(resp.Projects, ProjectView{
			Title: p.Title,
			Link:  p.Link,
			Tools: p.Tools,
		})
	}
	if len(resp.Projects) == 0 {
		resp.Message = "No projects found. Add them in " + filepath.Join(s.assets.Config().Dir, s.assets.Config().ProjectsFile)
	}

	return c.JSON(resp)
}

func (s *Server) handleProfile(c *fiber.Ctx) error {
	data, err := s.assets.Profile(c.UserContext())
	if err != nil {
		return s.assetError(c, "profile image", err)
	}

	c.Set(fiber.HeaderContentType, http.DetectContentType(data))
	return c.Send(data)
}

func (s *Server) handleCV(c *fiber.Ctx) error {
	data, err := s.assets.CV(c.UserContext())
	if err != nil {
		return s.assetError(c, "CV", err)
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Attachment(filepath.Base(s.assets.Config().CVFile))
	return c.Send(data)
}

func (s *Server) assetExists(c *fiber.Ctx, read func(context.Context) ([]byte, error)) bool {
	_, err := read(c.UserContext())
	return err == nil
}

func (s *Server) assetError(c *fiber.Ctx, name string, err error) error {
	if errors.Is(err, assets.ErrMissing) {
		return errorJSON(c, fiber.StatusNotFound, name+" not found")
	}
	s.logger.Error("failed to read asset", zap.String("asset", name), zap.Error(err))
	return errorJSON(c, fiber.StatusInternalServerError, "failed to read "+name)
}
