package handler // declare the package name; contains HTTP handlers

import (
    "net/http" // net/http provides status codes and response helpers

    "github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Health is a simple health‑check endpoint used by load balancers and
// monitoring systems to verify that the service is running.  It returns
// a plain text "ok" message with an HTTP 200 status code.
func Health(c echo.Context) error {
    return c.String(http.StatusOK, "ok") // write "ok" with a 200 OK status; String writes plain text
}

// IndexHandler serves the start page.
type IndexHandler struct {
    Pages
}

func NewIndexHandler(flash *Flasher) *IndexHandler {
    return &IndexHandler{Pages: Pages{Flash: flash}}
}

// Index renders the welcome page.
func (h *IndexHandler) Index(c echo.Context) error {
    return h.render(c, http.StatusOK, "index", "", nil)
}
