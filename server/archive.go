package server

import (
	"crypto/subtle"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/keyauth"
	"go.uber.org/zap"

	"github.com/claire-namusoke/portfolio/pkg/archive"
)

func (s *Server) validateArchiveToken(_ *fiber.Ctx, key string) (bool, error) {
	if subtle.ConstantTimeCompare([]byte(key), []byte(s.config.ArchiveToken)) == 1 {
		return true, nil
	}
	return false, keyauth.ErrMissingOrMalformedAPIKey
}

func unauthorized(c *fiber.Ctx, _ error) error {
	return errorJSON(c, fiber.StatusUnauthorized, "unauthorized")
}

func (s *Server) handleArchiveStats(c *fiber.Ctx) error {
	stats, err := s.archiver.Stats(c.UserContext())
	if err != nil {
		s.logger.Error("failed to read archive stats", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "failed to read archive stats")
	}
	return c.JSON(stats)
}

func (s *Server) handleListHistories(c *fiber.Ctx) error {
	histories, err := s.archiver.Histories(c.UserContext())
	if err != nil {
		s.logger.Error("failed to list archived conversations", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "failed to list conversations")
	}
	return c.JSON(map[string]any{
		"histories": histories,
		"count":     len(histories),
	})
}

func (s *Server) handleGetHistory(c *fiber.Ctx) error {
	hash := c.Params("hash")
	if hash == "" {
		return errorJSON(c, fiber.StatusBadRequest, "hash parameter is required")
	}

	history, err := s.archiver.History(c.UserContext(), hash)
	if err != nil {
		var notFound archive.ErrNotFound
		if errors.As(err, &notFound) {
			return errorJSON(c, fiber.StatusNotFound, "conversation not found")
		}
		s.logger.Error("failed to load archived conversation", zap.String("hash", hash), zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "failed to load conversation")
	}
	return c.JSON(history)
}
