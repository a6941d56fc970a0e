package queue

import (
	"os"
	"path"
	"reflect"
	"sync"

	"github.com/pkg/errors"
	"github.com/uncharted-causemos/dque"
	"gitlab.uncharted.software/WM/runsync-client/api/job"
)

const queueSegmentSize = 50

// PersistedFIFOQueue is a notification queue that is stored on disk so that received
// notifications survive a restart of the receiver.
type PersistedFIFOQueue struct {
	queue  *dque.DQue
	size   int
	hashes map[int]bool
	mutex  *sync.RWMutex
}

func queuedItemBuilder() interface{} {
	return &queuedItem{}
}

// KeyMapBuilder collects the dedup keys of the entries deserialized from the persisted
// dque on startup.
type KeyMapBuilder struct {
	KeyMap map[int]bool
}

// Apply is called on each item of the persisted queue when it is loaded from disk.
func (k *KeyMapBuilder) Apply(entry interface{}) error {
	item, ok := entry.(*queuedItem)
	if !ok {
		return errors.Errorf("unexpected type %s", reflect.TypeOf(entry))
	}
	if item.Hashed {
		k.KeyMap[item.Key] = true
	}
	return nil
}

// NewPersistedFIFOQueue opens the queue stored under queueDir/queueName, creating it if
// needed.  The number of queued entries is limited by the `size` parameter.
func NewPersistedFIFOQueue(size int, queueDir string, queueName string) (NotificationQueue, error) {
	queuePath := path.Join(queueDir, queueName)

	var queue *dque.DQue
	if _, err := os.Stat(queuePath); err != nil {
		if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to stat request queue %s", queuePath)
		}
		if err := os.MkdirAll(queueDir, os.ModePerm); err != nil {
			return nil, errors.Wrapf(err, "failed to create queue dir %s", queueDir)
		}
		queue, err = dque.New(queueName, queueDir, queueSegmentSize, queuedItemBuilder)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to initialize queue %s", queuePath)
		}
	} else {
		queue, err = dque.Open(queueName, queueDir, queueSegmentSize, queuedItemBuilder)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load queue %s", queuePath)
		}
	}

	mapBuilder := KeyMapBuilder{KeyMap: map[int]bool{}}
	if err := queue.ApplyToQueue(&mapBuilder); err != nil {
		return nil, errors.Wrapf(err, "failed rebuild key set for %s", queuePath)
	}

	return &PersistedFIFOQueue{
		queue:  queue,
		size:   size,
		hashes: mapBuilder.KeyMap,
		mutex:  &sync.RWMutex{},
	}, nil
}

// Enqueue adds a new notification to the queue.  If the queue is full, the notification
// will not be added, and the function will return `false`.
func (r *PersistedFIFOQueue) Enqueue(n job.Notification) (bool, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.queue.Size() >= r.size {
		return false, nil
	}
	if err := r.queue.Enqueue(&queuedItem{Value: n}); err != nil {
		return false, errors.Wrap(err, "failed to enqueue")
	}
	return true, nil
}

// EnqueueHashed adds a notification unless one with the same key is already queued.
// If the queue is full, nothing is added and `false` is returned.  A duplicate is not
// added but still reports `true`.
func (r *PersistedFIFOQueue) EnqueueHashed(key int, n job.Notification) (bool, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.hashes[key] {
		return true, nil
	}
	if r.queue.Size() >= r.size {
		return false, nil
	}
	if err := r.queue.Enqueue(&queuedItem{Value: n, Key: key, Hashed: true}); err != nil {
		return false, errors.Wrap(err, "failed to enqueue with hash key")
	}
	r.hashes[key] = true
	return true, nil
}

// Dequeue removes the oldest notification.  If the queue is empty, the operation blocks.
func (r *PersistedFIFOQueue) Dequeue() (job.Notification, error) {
	result, err := r.queue.DequeueBlock()
	if err != nil {
		return job.Notification{}, errors.Wrap(err, "failed to dequeue")
	}

	return r.release(result)
}

// TryDequeue removes the oldest notification without waiting.  The boolean is `false` when
// the queue is empty.
func (r *PersistedFIFOQueue) TryDequeue() (job.Notification, bool, error) {
	result, err := r.queue.Dequeue()
	if err == dque.ErrEmpty {
		return job.Notification{}, false, nil
	}
	if err != nil {
		return job.Notification{}, false, errors.Wrap(err, "failed to dequeue")
	}

	n, err := r.release(result)
	if err != nil {
		return job.Notification{}, false, err
	}
	return n, true, nil
}

// release drops the key of a dequeued entry from the dedup set.
func (r *PersistedFIFOQueue) release(result interface{}) (job.Notification, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	item, ok := result.(*queuedItem)
	if !ok {
		return job.Notification{}, errors.Errorf("unexpected type %s", reflect.TypeOf(result))
	}
	if item.Hashed {
		delete(r.hashes, item.Key)
	}
	return item.Value, nil
}

// Size returns the current size of the queue.
func (r *PersistedFIFOQueue) Size() int {
	return r.queue.Size()
}

// Clear empties the queue.
func (r *PersistedFIFOQueue) Clear() error {
	// the underlying queue has no clear function so our only option is to drain it
	// iteratively
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.hashes = map[int]bool{}

	count := r.queue.Size()
	for i := 0; i < count; i++ {
		if _, err := r.queue.Dequeue(); err != nil {
			return errors.Wrap(err, "failed to clear queue")
		}
	}
	return nil
}

// Close closes the queue, flushes state to disk, and disallows any further operations.
func (r *PersistedFIFOQueue) Close() error {
	return errors.Wrap(r.queue.Close(), "failed to close queue")
}

// contents is used to extract the items in the persisted queue.
type contents struct {
	notifications []job.Notification
}

// Apply is called on each element of the queue each time the contents of the queue
// must be read
func (c *contents) Apply(entry interface{}) error {
	item, ok := entry.(*queuedItem)
	if !ok {
		return errors.Errorf("unexpected type %s", reflect.TypeOf(entry))
	}
	c.notifications = append(c.notifications, item.Value)
	return nil
}

// GetAll returns a copy of the queued notifications, oldest first.
func (r *PersistedFIFOQueue) GetAll() ([]job.Notification, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	queueContents := contents{notifications: make([]job.Notification, 0, r.queue.Size())}
	if err := r.queue.ApplyToQueue(&queueContents); err != nil {
		return nil, errors.Wrap(err, "failed to read queue contents")
	}
	return queueContents.notifications, nil
}
