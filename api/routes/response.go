package routes

import (
	"net/http"

	"github.com/go-chi/render"
	"go.uber.org/zap"
)

const serverErrorMessage = "An error occured on the server while processing the request"

func handleJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	render.Status(r, status)
	render.JSON(w, r, data)
}

// handleErrorType logs the error and replies with the supplied code.  Client errors
// echo the error text, server errors use a generic message.
func handleErrorType(w http.ResponseWriter, err error, code int, logger *zap.SugaredLogger) {
	logger.Errorf("%+v", err)
	errMessage := serverErrorMessage
	if code < http.StatusInternalServerError {
		errMessage = err.Error()
	}
	http.Error(w, errMessage, code)
}
