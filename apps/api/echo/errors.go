package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/udahili/core"
	"github.com/trezcool/udahili/core/admission"
	"github.com/trezcool/udahili/core/course"
	"github.com/trezcool/udahili/core/job"
	"github.com/trezcool/udahili/core/student"
)

var (
	errHttpUnauthorized = echo.NewHTTPError(http.StatusUnauthorized, "actor not authenticated")
	errHttpForbidden    = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound     = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// conflicts maps business rule violations to 409.
var conflicts = map[error]struct{}{
	admission.ErrLimitExceeded:        {},
	admission.ErrDuplicateApplication: {},
	admission.ErrUnqualifiedAdmission: {},
	admission.ErrInvalidTransition:    {},
	admission.ErrStatusConflict:       {},
	course.ErrNoSeatsAvailable:        {},
	course.ErrCourseInUse:             {},
	job.ErrDeadlinePassed:             {},
	job.ErrDuplicateApplication:       {},
	student.ErrEmailExists:            {},
}

var notFounds = map[error]struct{}{
	admission.ErrNotFound: {},
	course.ErrNotFound:    {},
	job.ErrNotFound:       {},
	student.ErrNotFound:   {},
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(deps ServerDeps, signalShutdown func()) echo.HTTPErrorHandler {
	logger := deps.Logger
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		cause := errors.Cause(err)
		switch origErr := cause.(type) {
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
				fldErrs[vErr.Field()] = vErr.Translate(deps.Translator)
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
		default:
			switch {
			case isIn(conflicts, cause):
				code = http.StatusConflict
				message = cause.Error()
			case isIn(notFounds, cause):
				code = http.StatusNotFound
				message = cause.Error()
			case cause == core.ErrUnauthorized:
				code = http.StatusForbidden
				message = cause.Error()
			case cause == core.ErrStoreUnavailable:
				code = http.StatusServiceUnavailable
				message = cause.Error()
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg

				var actor core.Actor
				if a, aErr := getContextActor(ctx); aErr == nil {
					actor = a
				}
				logger.Error(msg, errors.Wrap(err, msg), actor)

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		} else if m, ok := message.(string); ok {
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

func isIn(set map[error]struct{}, err error) bool {
	_, ok := set[err]
	return ok
}
