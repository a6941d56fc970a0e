package routes

import (
	"net/http"

	"gitlab.uncharted.software/WM/runsync-client/api/queue"
	"gitlab.uncharted.software/WM/runsync-client/config"
)

// ClearRequest clears the notification queue.
func ClearRequest(cfg *config.Config, notificationQueue queue.NotificationQueue) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := notificationQueue.Clear(); err != nil {
			handleErrorType(w, err, http.StatusInternalServerError, cfg.Logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
