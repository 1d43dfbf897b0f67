package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/idelchi/foldersize/internal/log"
	"github.com/idelchi/foldersize/internal/scan"
)

type listFunc func(ctx context.Context, dir string) ([]scan.Item, error)

func (s *Server) listContents(ctx echo.Context) error {
	return s.list(ctx, s.scanner.ListFolderContents)
}

func (s *Server) listFolders(ctx echo.Context) error {
	return s.list(ctx, s.scanner.ListFoldersAndSizes)
}

// list runs fn with the request context, so a disconnecting client cancels the scan.
func (s *Server) list(ctx echo.Context, fn listFunc) error {
	path := ctx.QueryParam("path")
	if path == "" {
		return errorJSON(ctx, http.StatusBadRequest, "path is required")
	}

	items, err := fn(ctx.Request().Context(), path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("listing failed")

		return errorJSON(ctx, http.StatusNotFound, err.Error())
	}

	return ctx.JSON(http.StatusOK, items)
}

func (s *Server) topK(ctx echo.Context) error {
	path := ctx.QueryParam("path")
	if path == "" {
		return errorJSON(ctx, http.StatusBadRequest, "path is required")
	}

	k := DefaultTopK

	if raw := ctx.QueryParam("k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return errorJSON(ctx, http.StatusBadRequest, "k must be a positive integer")
		}

		k = n
	}

	items, err := s.scanner.FindTopK(ctx.Request().Context(), path, k)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("top-k failed")

		return errorJSON(ctx, http.StatusNotFound, err.Error())
	}

	return ctx.JSON(http.StatusOK, items)
}

func (s *Server) deleteEntry(ctx echo.Context) error {
	path := ctx.QueryParam("path")
	if path == "" {
		return errorJSON(ctx, http.StatusBadRequest, "path is required")
	}

	permanent := s.allowPermanent

	if raw := ctx.QueryParam("permanent"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return errorJSON(ctx, http.StatusBadRequest, "permanent must be a boolean")
		}

		permanent = b
	}

	outcome := s.scanner.Remove(path, permanent)
	deleted := outcome.OK()

	log.Info().Str("path", path).Bool("permanent", permanent).Str("result", string(outcome)).Msg("delete request")

	status := http.StatusOK
	if !deleted {
		status = http.StatusConflict
	}

	return ctx.JSON(status, map[string]any{
		"path":    path,
		"deleted": deleted,
		"result":  outcome,
	})
}

func (s *Server) clearCache(ctx echo.Context) error {
	s.scanner.ClearCache()

	return ctx.NoContent(http.StatusNoContent)
}

func (s *Server) invalidate(ctx echo.Context) error {
	path := ctx.QueryParam("path")
	if path == "" {
		return errorJSON(ctx, http.StatusBadRequest, "path is required")
	}

	s.scanner.Invalidate(path)

	return ctx.NoContent(http.StatusNoContent)
}
