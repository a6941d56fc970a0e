package queue

import "gitlab.uncharted.software/WM/runsync-client/api/job"

// NotificationQueue defines a bounded FIFO of webhook notifications with optional
// key based deduplication.
type NotificationQueue interface {
	Enqueue(n job.Notification) (bool, error)
	EnqueueHashed(key int, n job.Notification) (bool, error)
	Dequeue() (job.Notification, error)
	TryDequeue() (job.Notification, bool, error)
	Clear() error
	Close() error
	Size() int
	GetAll() ([]job.Notification, error)
}

// queuedItem is the stored form of a notification.  Hashed marks entries added through
// EnqueueHashed, whose Key takes part in deduplication.
type queuedItem struct {
	Key    int
	Hashed bool
	Value  job.Notification
}
