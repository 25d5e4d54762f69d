package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/haid/charityconnect/core"
	"github.com/haid/charityconnect/core/donor"
	"github.com/haid/charityconnect/core/needy"
)

const validationErrMsg = "Validation error"

var errHttpNotFound = echo.NewHTTPError(http.StatusNotFound, "not found")

type (
	ErrorResponse struct {
		Message string            `json:"message"`
		Errors  map[string]string `json:"errors,omitempty"`
	}
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var resp ErrorResponse

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			if msg, ok := origErr.Message.(string); ok {
				resp.Message = msg
			} else {
				resp.Message = http.StatusText(code)
			}
		case validator.ValidationErrors:
			resp.Errors = make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				resp.Errors[core.FieldPath(vErr)] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			resp.Message = validationErrMsg
		case *core.ValidationError:
			if origErr.Fields != nil {
				resp.Errors = make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					resp.Errors[fErr.Field] = fErr.Error
				}
				resp.Message = validationErrMsg
			} else {
				resp.Message = origErr.Error()
			}
			code = http.StatusBadRequest
		case *core.PaymentError:
			code = http.StatusBadRequest
			resp.Message = "Payment not completed"
		default:
			switch origErr {
			case needy.ErrNotFound, donor.ErrDonorNotFound, donor.ErrItemNotFound:
				code = http.StatusNotFound
				resp.Message = origErr.Error()
			case needy.ErrInvalidTransition:
				code = http.StatusConflict
				resp.Message = err.Error()
			case donor.ErrPaymentAlreadyRecorded:
				code = http.StatusConflict
				resp.Message = origErr.Error()
			case core.ErrPaymentUnavailable:
				code = http.StatusServiceUnavailable
				resp.Message = origErr.Error()
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				resp.Message = msg
				if ctx.Echo().Debug {
					resp.Message = err.Error()
				}

				logger.Error(msg, errors.Wrap(err, msg), map[string]interface{}{
					"method": ctx.Request().Method,
					"path":   ctx.Request().URL.Path,
				})

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, resp)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
