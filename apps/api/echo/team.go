package echoapi

import (
	"fmt"
	"io/ioutil"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/hukumu/core/group"
	"github.com/trezcool/hukumu/core/team"
	"github.com/trezcool/hukumu/services/metrics"
)

type teamApi struct {
	svc *team.Service
}

func registerTeamAPI(g *echo.Group, svc *team.Service) {
	api := teamApi{svc: svc}

	tg := g.Group("/teams")
	tg.GET("", api.query)
	tg.POST("", api.create)
	tg.POST("/upload", api.upload)

	g.GET("/template/teams-csv", api.csvTemplate)
}

// Handlers

// query returns the group's teams as a bare list when filtered, and wraps the
// unfiltered list as {"teams": [...]} for the admin dashboard.
func (api *teamApi) query(ctx echo.Context) error {
	if grp := ctx.QueryParam("group"); grp != "" {
		teams, err := api.svc.QueryByGroup(grp)
		if err != nil {
			return errors.Wrap(err, "querying teams")
		}
		return ctx.JSON(http.StatusOK, teams)
	}

	teams, err := api.svc.QueryAll()
	if err != nil {
		return errors.Wrap(err, "querying teams")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"teams": teams})
}

func (api *teamApi) create(ctx echo.Context) error {
	var data team.NewTeam
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTeam")
	}
	if data.Group == "" {
		data.Group = ctx.QueryParam("group")
	}

	t, err := api.svc.Create(data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *teamApi) upload(ctx echo.Context) error {
	fh, err := ctx.FormFile("csvFile")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "No CSV file uploaded")
	}
	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer f.Close()
	data, err := ioutil.ReadAll(f)
	if err != nil {
		return errors.Wrap(err, "reading uploaded file")
	}

	grp := ctx.QueryParam("group")
	res, err := api.svc.ImportCSV(data, grp)
	if err != nil {
		return err
	}
	metrics.ObserveImport(group.Normalize(grp), res.Imported)

	newTeams := make([]echo.Map, 0, len(res.NewTeams))
	for _, t := range res.NewTeams {
		newTeams = append(newTeams, echo.Map{"name": t.Name, "id": t.ID})
	}
	msg := fmt.Sprintf("Successfully imported %d teams", res.Imported)
	if len(res.Duplicates) > 0 {
		msg += fmt.Sprintf(" (%d duplicates skipped)", res.DuplicatesSkipped)
	}

	out := echo.Map{
		"success":           true,
		"message":           msg,
		"imported":          res.Imported,
		"duplicatesSkipped": res.DuplicatesSkipped,
		"totalProcessed":    res.TotalProcessed,
		"newTeams":          newTeams,
	}
	if len(res.Duplicates) > 0 {
		out["duplicates"] = res.Duplicates
	}
	return ctx.JSON(http.StatusOK, out)
}

func (api *teamApi) csvTemplate(ctx echo.Context) error {
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="teams-upload-template.csv"`)
	return ctx.Blob(http.StatusOK, "text/csv", team.CSVTemplate())
}
