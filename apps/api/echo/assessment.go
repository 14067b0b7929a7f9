package echoapi

import (
	"net/http"
	"net/mail"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/hukumu/core"
	"github.com/trezcool/hukumu/core/assessment"
	"github.com/trezcool/hukumu/services/metrics"
)

type assessmentApi struct {
	svc     *assessment.Service
	mailSvc core.EmailService
}

func registerAssessmentAPI(g *echo.Group, svc *assessment.Service, mailSvc core.EmailService) {
	api := assessmentApi{svc: svc, mailSvc: mailSvc}

	ag := g.Group("/assessments")
	ag.POST("", api.submit)
	ag.GET("", api.query)
	ag.GET("/team/:teamName", api.queryByTeam)
	ag.GET("/group/:groupName", api.queryByGroupTeams)
	ag.POST("/complete", api.complete)

	g.GET("/analytics", api.analytics)
	g.GET("/export/csv", api.exportCSV)
	g.POST("/email/results", api.emailResults)
	g.GET("/team-results", api.teamResults)
	g.POST("/test-email", api.testEmail)
}

// Handlers

func (api *assessmentApi) submit(ctx echo.Context) error {
	var data assessment.NewAssessment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssessment")
	}

	a, updated, err := api.svc.Submit(data)
	if err != nil {
		return err
	}
	metrics.ObserveSubmission(a.Group, updated)

	return ctx.JSON(http.StatusOK, echo.Map{
		"success":      true,
		"message":      "Assessment submitted successfully",
		"assessmentId": a.ID,
	})
}

func (api *assessmentApi) query(ctx echo.Context) error {
	assessments, err := api.svc.QueryByGroup(ctx.QueryParam("group"))
	if err != nil {
		return errors.Wrap(err, "querying assessments")
	}
	return ctx.JSON(http.StatusOK, assessments)
}

func (api *assessmentApi) queryByTeam(ctx echo.Context) error {
	assessments, err := api.svc.QueryByTeam(ctx.Param("teamName"), ctx.QueryParam("group"))
	if err != nil {
		return errors.Wrap(err, "querying team assessments")
	}
	return ctx.JSON(http.StatusOK, assessments)
}

func (api *assessmentApi) queryByGroupTeams(ctx echo.Context) error {
	assessments, err := api.svc.QueryByGroupTeams(ctx.Param("groupName"))
	if err != nil {
		return errors.Wrap(err, "querying group assessments")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"assessments": assessments})
}

func (api *assessmentApi) complete(ctx echo.Context) error {
	var data assessment.CompleteRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CompleteRequest")
	}

	summary, err := api.svc.MarkComplete(data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"success":          true,
		"message":          "Assessments marked complete and admin notified",
		"assessmentsCount": summary.AssessmentsCount,
	})
}

func (api *assessmentApi) analytics(ctx echo.Context) error {
	analytics, err := api.svc.Analytics(ctx.QueryParam("group"))
	if err != nil {
		return errors.Wrap(err, "computing analytics")
	}
	return ctx.JSON(http.StatusOK, analytics)
}

func (api *assessmentApi) exportCSV(ctx echo.Context) error {
	content, err := api.svc.ExportCSV()
	if err != nil {
		return errors.Wrap(err, "exporting CSV")
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="team-assessments.csv"`)
	return ctx.Blob(http.StatusOK, "text/csv", content)
}

func (api *assessmentApi) emailResults(ctx echo.Context) error {
	res, err := api.svc.EmailResults(ctx.QueryParam("group"))
	if err != nil {
		return err
	}
	if res.Skipped {
		return ctx.JSON(http.StatusOK, echo.Map{
			"success": true,
			"message": "No program team emails configured, export skipped",
		})
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"success":         true,
		"message":         "Assessment results emailed successfully",
		"recipients":      res.Recipients,
		"assessmentCount": res.AssessmentCount,
	})
}

func (api *assessmentApi) teamResults(ctx echo.Context) error {
	results, err := api.svc.TeamResults(ctx.QueryParam("group"), ctx.QueryParam("pin"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, results)
}

type testEmailRequest struct {
	Email string `json:"email"`
}

// testEmailData feeds the test-email template.
type testEmailData struct {
	From   string
	To     string
	SentAt time.Time
}

func (api *assessmentApi) testEmail(ctx echo.Context) error {
	var data testEmailRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to testEmailRequest")
	}
	recipient := core.CleanString(data.Email)
	if recipient == "" {
		recipient = core.Conf.DefaultFromEmail.Address
	}

	api.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Address: recipient}},
		Subject:      "Email Configuration Test",
		TemplateName: "test-email",
		TemplateData: testEmailData{
			From:   core.Conf.DefaultFromEmail.Address,
			To:     recipient,
			SentAt: time.Now().UTC(),
		},
	})
	return ctx.JSON(http.StatusOK, echo.Map{
		"success":   true,
		"message":   "Test email sent successfully",
		"recipient": recipient,
	})
}
