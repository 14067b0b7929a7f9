package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/hukumu/core"
)

type healthResponse struct {
	Status          string `json:"status"`
	Timestamp       string `json:"timestamp"`
	Assessments     int    `json:"assessments"`
	Teams           int    `json:"teams"`
	EmailConfigured bool   `json:"emailConfigured"`
}

func (s *server) health(ctx echo.Context) error {
	teams, err := s.opts.TeamSvc.QueryAll()
	if err != nil {
		return errors.Wrap(err, "querying teams")
	}
	assessments, err := s.opts.AssessmentSvc.QueryAll()
	if err != nil {
		return errors.Wrap(err, "querying assessments")
	}
	return ctx.JSON(http.StatusOK, healthResponse{
		Status:          "healthy",
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
		Assessments:     len(assessments),
		Teams:           len(teams),
		EmailConfigured: core.Conf.SendgridApiKey != "",
	})
}
