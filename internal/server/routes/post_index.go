package routes

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wfiftyfour/graphrag/internal/queue"
	"github.com/wfiftyfour/graphrag/internal/server/middleware"
	"github.com/wfiftyfour/graphrag/pkg/logger"
)

// IndexHandler enqueues an index build job for the worker. The server
// keeps answering from the currently loaded index until it is restarted
// against the new build.
func IndexHandler(c echo.Context) error {
	type indexBody struct {
		DocsDir         string  `json:"docs_dir" validate:"required"`
		Resolution      float64 `json:"resolution" validate:"omitempty,gt=0"`
		Workers         int     `json:"workers" validate:"omitempty,min=1,max=32"`
		SkipCommunities bool    `json:"skip_communities"`
	}

	data := new(indexBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	state := c.(*middleware.AppContext).State
	if state.Queue == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Index queue not configured"})
	}

	job := queue.BuildJobMsg{
		DocsDir:         data.DocsDir,
		Resolution:      data.Resolution,
		Workers:         data.Workers,
		SkipCommunities: data.SkipCommunities,
	}
	msgBytes, err := json.Marshal(job)
	if err != nil {
		logger.Error("[Server] Failed to marshal build job", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	if err := queue.PublishFIFO(state.Queue, queue.BuildQueue, msgBytes); err != nil {
		logger.Error("[Server] Failed to enqueue build job", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusAccepted, map[string]string{"message": "Build job enqueued"})
}
