package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
)

// CatalogHandler serves the public movie list.
type CatalogHandler struct {
    Pages
    Catalog CatalogService
}

func NewCatalogHandler(catalog CatalogService, flash *Flasher) *CatalogHandler {
    return &CatalogHandler{Pages: Pages{Flash: flash}, Catalog: catalog}
}

// ListMovies renders every movie with its scheduled shows.  There is
// no pagination or filtering.
func (h *CatalogHandler) ListMovies(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    listings, err := h.Catalog.Listings(ctx)
    if err != nil {
        return err
    }
    return h.render(c, http.StatusOK, "movies/list", "Movies", echo.Map{"listings": listings})
}
