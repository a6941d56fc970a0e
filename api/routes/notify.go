package routes

import (
	"encoding/json"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"gitlab.uncharted.software/WM/runsync-client/api/helpers"
	"gitlab.uncharted.software/WM/runsync-client/api/job"
	"gitlab.uncharted.software/WM/runsync-client/api/queue"
	"gitlab.uncharted.software/WM/runsync-client/config"
)

// largest notification body accepted from the worker
const maxNotificationBytes = 1 << 20

// NotifyRequest stores a notification posted by the training worker.  Repeated deliveries
// of the same body are only stored once.  Returns a 413 for bodies over 1 MiB and a 503 if
// the queue is at capacity.
func NotifyRequest(cfg *config.Config, notificationQueue queue.NotificationQueue) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		// Read the body into a byte array, refusing anything over the limit
		body, err := ioutil.ReadAll(http.MaxBytesReader(w, r.Body, maxNotificationBytes))
		defer r.Body.Close()
		if err != nil {
			handleErrorType(w, errors.Wrap(err, "failed to read notification body"), http.StatusRequestEntityTooLarge, cfg.Logger)
			return
		}

		// Decode and respond with a 400 on failure
		var notification job.Notification
		if err := json.Unmarshal(body, &notification); err != nil {
			handleErrorType(w, errors.Wrap(err, "failed to unmarshal notification body"), http.StatusBadRequest, cfg.Logger)
			return
		}
		if err := helpers.CheckNotificationParams(notification); err != nil {
			handleErrorType(w, err, http.StatusBadRequest, cfg.Logger)
			return
		}
		notification.ReceivedAt = time.Now().UTC()

		cfg.Logger.Infof("Received %s notification for job %s", notification.Type, notification.JobID)

		if err := helpers.AddToQueue(notification, body, notificationQueue); err != nil {
			if err == helpers.ErrQueueFull {
				handleErrorType(w, err, http.StatusServiceUnavailable, cfg.Logger)
				return
			}
			handleErrorType(w, err, http.StatusInternalServerError, cfg.Logger)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}
