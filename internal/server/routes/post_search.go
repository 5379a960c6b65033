package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wfiftyfour/graphrag/internal/app"
	"github.com/wfiftyfour/graphrag/internal/server/middleware"
	"github.com/wfiftyfour/graphrag/pkg/logger"
	"github.com/wfiftyfour/graphrag/pkg/search"
)

// SearchHandler runs one retrieval pass and optionally generates and
// evaluates an answer.
func SearchHandler(c echo.Context) error {
	type searchBody struct {
		Query       string `json:"query" validate:"required"`
		Mode        string `json:"mode" validate:"omitempty,oneof=local global hybrid"`
		TopK        int    `json:"top_k" validate:"omitempty,min=1,max=100"`
		Generate    bool   `json:"generate"`
		Evaluate    bool   `json:"evaluate"`
		GroundTruth string `json:"ground_truth"`
	}

	data := new(searchBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	state := c.(*middleware.AppContext).State
	resp, err := state.App.Query(c.Request().Context(), app.QueryParams{
		Query:       data.Query,
		Mode:        search.Mode(data.Mode),
		TopK:        data.TopK,
		Generate:    data.Generate,
		Evaluate:    data.Evaluate,
		GroundTruth: data.GroundTruth,
	})
	if err != nil {
		logger.Error("[Server] Search failed", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusOK, resp)
}
