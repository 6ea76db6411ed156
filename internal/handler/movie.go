package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-ticketing/internal/movieapi"
	"github.com/iliyamo/cinema-ticketing/internal/repository"
)

// MovieHandler manages the local movie billboard and proxies the external
// catalog.  Movies enter the system by importing a catalog record; the
// catalog id becomes the local id.
type MovieHandler struct {
	Movies  *repository.MovieRepo
	Catalog *movieapi.Client
}

func NewMovieHandler(movies *repository.MovieRepo, catalog *movieapi.Client) *MovieHandler {
	return &MovieHandler{Movies: movies, Catalog: catalog}
}

type importMovieReq struct {
	CatalogID uint64 `json:"catalog_id"`
}

type setAvailabilityReq struct {
	Available bool `json:"available"`
}

// Import pulls a movie from the catalog into the local billboard.
func (h *MovieHandler) Import(c echo.Context) error {
	var req importMovieReq
	if err := c.Bind(&req); err != nil || req.CatalogID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "catalog_id required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	details, err := h.Catalog.Details(ctx, req.CatalogID)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "movie catalog unavailable"})
	}
	if details.RuntimeMin == 0 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "catalog record has no runtime"})
	}

	movie := &repository.Movie{
		ID:          details.ID,
		Title:       details.Title,
		Overview:    details.Overview,
		PosterPath:  details.PosterPath,
		DurationMin: details.RuntimeMin,
		Available:   true,
	}
	if err := h.Movies.Create(ctx, movie); err != nil {
		if errors.Is(err, repository.ErrMovieExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "movie already imported"})
		}
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, movie)
}

// Search proxies a title search to the catalog so admins can find the id to
// import.
func (h *MovieHandler) Search(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("query"))
	if query == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "query required"})
	}
	page, _ := strconv.Atoi(c.QueryParam("page"))

	ctx, cancel := reqCtx(c)
	defer cancel()

	results, err := h.Catalog.Search(ctx, query, page)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "movie catalog unavailable"})
	}
	return c.JSON(http.StatusOK, echo.Map{"results": results})
}

// ListAvailable returns the public billboard.
func (h *MovieHandler) ListAvailable(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	movies, err := h.Movies.List(ctx, true)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, movies)
}

// ListAll returns every movie including withdrawn ones.
func (h *MovieHandler) ListAll(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	movies, err := h.Movies.List(ctx, false)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, movies)
}

// Get returns one movie.
func (h *MovieHandler) Get(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	movie, err := h.Movies.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, movie)
}

// SetAvailability shows or hides a movie on the billboard.
func (h *MovieHandler) SetAvailability(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req setAvailabilityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Movies.SetAvailability(ctx, id, req.Available); err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return serviceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete removes a movie from the billboard.
func (h *MovieHandler) Delete(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Movies.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return serviceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
