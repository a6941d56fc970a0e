package queue

import (
	"container/list"
	"sync"

	"github.com/pkg/errors"
	"gitlab.uncharted.software/WM/runsync-client/api/job"
)

// ListFIFOQueue is an in-memory notification queue backed by a doubly linked list.
type ListFIFOQueue struct {
	queue  *list.List
	hashes map[int]bool
	size   int
	closed bool
	mutex  *sync.RWMutex
	cond   *sync.Cond
}

// NewListFIFOQueue creates a queue that is immediately ready to receive notifications.
// The number of queued entries is limited by the `size` parameter.
func NewListFIFOQueue(size int) NotificationQueue {
	mutex := &sync.RWMutex{}

	return &ListFIFOQueue{
		queue:  list.New(),
		hashes: map[int]bool{},
		size:   size,
		closed: false,
		mutex:  mutex,
		cond:   sync.NewCond(mutex),
	}
}

// Enqueue adds a new notification to the queue.  If the queue is full, the notification
// will not be added, and the function will return `false`.
func (r *ListFIFOQueue) Enqueue(n job.Notification) (bool, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.closed {
		return false, errors.New("no enqueue after close")
	}

	if r.queue.Len() < r.size {
		r.queue.PushBack(&queuedItem{Value: n})
		r.cond.Signal()
		return true, nil
	}
	return false, nil
}

// EnqueueHashed adds a notification unless one with the same key is already queued.
// If the queue is full, nothing is added and `false` is returned.  A duplicate is not
// added but still reports `true`.
func (r *ListFIFOQueue) EnqueueHashed(key int, n job.Notification) (bool, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.closed {
		return false, errors.New("no enqueue after close")
	}

	if r.hashes[key] {
		return true, nil
	}
	if r.queue.Len() >= r.size {
		return false, nil
	}
	r.queue.PushBack(&queuedItem{Value: n, Key: key, Hashed: true})
	r.hashes[key] = true
	// signal that there's data available
	r.cond.Signal()
	return true, nil
}

// Dequeue removes the oldest notification.  If the queue is empty, the operation blocks.
func (r *ListFIFOQueue) Dequeue() (job.Notification, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	// wait until there's data
	for r.queue.Len() == 0 && !r.closed {
		r.cond.Wait()
	}
	if r.closed {
		return job.Notification{}, errors.New("no dequeue after close")
	}

	return r.pop(), nil
}

// TryDequeue removes the oldest notification without waiting.  The boolean is `false` when
// the queue is empty.
func (r *ListFIFOQueue) TryDequeue() (job.Notification, bool, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.closed {
		return job.Notification{}, false, errors.New("no dequeue after close")
	}
	if r.queue.Len() == 0 {
		return job.Notification{}, false, nil
	}
	return r.pop(), true, nil
}

// pop removes the front item, the caller holds the lock and has checked the queue is not
// empty.
func (r *ListFIFOQueue) pop() job.Notification {
	front := r.queue.Front()
	item := front.Value.(*queuedItem)

	// remove the item from the queue and the hash set if necessary
	r.queue.Remove(front)
	if item.Hashed {
		delete(r.hashes, item.Key)
	}
	return item.Value
}

// Size returns the current size of the queue.
func (r *ListFIFOQueue) Size() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.queue.Len()
}

// Clear empties the queue and its key set.
func (r *ListFIFOQueue) Clear() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.closed {
		return errors.New("no queue clear after close")
	}

	r.queue.Init()
	r.hashes = map[int]bool{}

	return nil
}

// Close closes the queue forbidding further operations.  Blocked dequeues return an
// error.
func (r *ListFIFOQueue) Close() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.closed {
		return errors.New("no close of previously closed queue")
	}

	r.closed = true
	r.cond.Broadcast()
	return nil
}

// GetAll returns a copy of the queued notifications, oldest first.
func (r *ListFIFOQueue) GetAll() ([]job.Notification, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	contents := make([]job.Notification, 0, r.queue.Len())
	for current := r.queue.Front(); current != nil; current = current.Next() {
		contents = append(contents, current.Value.(*queuedItem).Value)
	}
	return contents, nil
}
