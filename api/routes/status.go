package routes

import (
	"net/http"

	"gitlab.uncharted.software/WM/runsync-client/api/queue"
	"gitlab.uncharted.software/WM/runsync-client/config"
)

// StatusResponse provides the number of notifications currently queued.
type StatusResponse struct {
	Count    int `json:"count"`
	Capacity int `json:"capacity"`
}

// StatusRequest creates a get request handler that will return status info for the notification queue.
func StatusRequest(cfg *config.Config, notificationQueue queue.NotificationQueue) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		handleJSON(w, r, http.StatusOK, StatusResponse{
			Count:    notificationQueue.Size(),
			Capacity: cfg.Environment.NotificationQueueSize,
		})
	}
}
