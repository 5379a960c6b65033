package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wfiftyfour/graphrag/internal/app"
	"github.com/wfiftyfour/graphrag/internal/server/middleware"
	"github.com/wfiftyfour/graphrag/pkg/eval"
	"github.com/wfiftyfour/graphrag/pkg/logger"
	"github.com/wfiftyfour/graphrag/pkg/search"
)

// EvaluateHandler scores a caller-supplied answer: it reruns retrieval
// for the query and evaluates the answer against those results.
func EvaluateHandler(c echo.Context) error {
	type evaluateBody struct {
		Query       string `json:"query" validate:"required"`
		Answer      string `json:"answer" validate:"required"`
		Mode        string `json:"mode" validate:"omitempty,oneof=local global hybrid"`
		TopK        int    `json:"top_k" validate:"omitempty,min=1,max=100"`
		GroundTruth string `json:"ground_truth"`
	}

	data := new(evaluateBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	state := c.(*middleware.AppContext).State
	resp, err := state.App.Query(c.Request().Context(), app.QueryParams{
		Query: data.Query,
		Mode:  search.Mode(data.Mode),
		TopK:  data.TopK,
	})
	if err != nil {
		logger.Error("[Server] Evaluation retrieval failed", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	metrics := eval.Evaluate(data.Query, data.Answer, resp.Results, data.GroundTruth)
	return c.JSON(http.StatusOK, app.Evaluation{
		Metrics:      metrics,
		OverallScore: metrics.Overall(),
	})
}
