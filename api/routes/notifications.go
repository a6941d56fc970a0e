package routes

import (
	"net/http"

	"gitlab.uncharted.software/WM/runsync-client/api/queue"
	"gitlab.uncharted.software/WM/runsync-client/config"
)

// NotificationsRequest returns the queued notifications, oldest first.
func NotificationsRequest(cfg *config.Config, notificationQueue queue.NotificationQueue) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		notifications, err := notificationQueue.GetAll()
		if err != nil {
			handleErrorType(w, err, http.StatusInternalServerError, cfg.Logger)
			return
		}
		handleJSON(w, r, http.StatusOK, notifications)
	}
}

// NextNotificationRequest removes and returns the oldest notification, or responds with
// 204 when none are waiting.
func NextNotificationRequest(cfg *config.Config, notificationQueue queue.NotificationQueue) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		notification, ok, err := notificationQueue.TryDequeue()
		if err != nil {
			handleErrorType(w, err, http.StatusInternalServerError, cfg.Logger)
			return
		}
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		handleJSON(w, r, http.StatusOK, notification)
	}
}
