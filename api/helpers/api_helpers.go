package helpers

import (
	"errors"

	"github.com/vova616/xxhash"
	"gitlab.uncharted.software/WM/runsync-client/api/job"
	"gitlab.uncharted.software/WM/runsync-client/api/queue"
)

// ErrQueueFull is returned when a notification could not be stored for lack of room.
var ErrQueueFull = errors.New("notification queue full")

// CheckNotificationParams checks if a webhook notification has all required information
func CheckNotificationParams(n job.Notification) error {
	if n.Type == "" {
		return errors.New("type missing")
	}
	if n.JobID == "" {
		return errors.New("job_id missing")
	}
	return nil
}

// NotificationKey hashes the raw notification body so that redelivered notifications
// can be recognized.
func NotificationKey(body []byte) int {
	return int(xxhash.Checksum32(body))
}

// AddToQueue stores a notification unless an identical one is already waiting.
func AddToQueue(n job.Notification, body []byte, notificationQueue queue.NotificationQueue) error {
	result, err := notificationQueue.EnqueueHashed(NotificationKey(body), n)
	if err != nil {
		return err
	} else if !result {
		return ErrQueueFull
	}
	return nil
}
