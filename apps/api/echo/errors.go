package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/hukumu/core"
	"github.com/trezcool/hukumu/core/assessment"
	"github.com/trezcool/hukumu/core/group"
	"github.com/trezcool/hukumu/core/team"
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(core.Translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		case *team.CSVValidationError:
			code = http.StatusBadRequest
			message = echo.Map{
				"error":      origErr.Error(),
				"details":    origErr.Details,
				"validTeams": origErr.ValidTeams,
				"totalRows":  origErr.TotalRows,
			}
		case *assessment.IncompleteError:
			code = http.StatusBadRequest
			message = origErr.Error()
		default:
			switch origErr {
			case group.ErrNotFound, team.ErrNotFound, assessment.ErrNotFound, assessment.ErrNotAssessed:
				code = http.StatusNotFound
				message = origErr.Error()
			case group.ErrExists, group.ErrHasTeams, group.ErrHasAssessments, assessment.ErrNoData:
				code = http.StatusBadRequest
				message = origErr.Error()
			case team.ErrEmptyCSV:
				code = http.StatusBadRequest
				message = echo.Map{
					"error":          origErr.Error(),
					"expectedFormat": "CSV should have columns: team_name, teamName, Team Name, name, or Name",
				}
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg
				logger.Error(msg, errors.Wrap(err, msg))

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
