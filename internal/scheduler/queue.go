package scheduler

import "time"

// timerQueue is a min-heap of deadlines with an id -> heap index map, so each
// block has at most one pending entry.
//
//   - Set:      O(log n)
//   - Pull:     O(log n) (only ever moves a deadline earlier)
//   - Pop:      O(log n)
//   - Remove:   O(log n)
//   - Contains: O(1)
//
// Not safe for concurrent use; the scheduler loop owns it.
type timerQueue struct {
	deadlines []time.Time
	ids       []string
	index     map[string]int
}

func newTimerQueue() *timerQueue {
	return &timerQueue{index: make(map[string]int)}
}

func (q *timerQueue) Len() int { return len(q.ids) }

func (q *timerQueue) Contains(id string) bool {
	_, ok := q.index[id]
	return ok
}

// Set schedules id at t, replacing any pending deadline.
// Returns true if id was not queued before.
func (q *timerQueue) Set(id string, t time.Time) bool {
	if i, ok := q.index[id]; ok {
		old := q.deadlines[i]
		q.deadlines[i] = t
		if t.Before(old) {
			q.up(i)
		} else if t.After(old) {
			q.down(i)
		}
		return false
	}

	i := len(q.ids)
	q.deadlines = append(q.deadlines, t)
	q.ids = append(q.ids, id)
	q.index[id] = i
	q.up(i)
	return true
}

// Pull schedules id at t unless it is already due earlier. Repeated requests
// for the same id collapse into one entry.
func (q *timerQueue) Pull(id string, t time.Time) {
	if i, ok := q.index[id]; ok && !t.Before(q.deadlines[i]) {
		return
	}
	q.Set(id, t)
}

// Peek returns the earliest entry without removing it.
func (q *timerQueue) Peek() (string, time.Time, bool) {
	if len(q.ids) == 0 {
		return "", time.Time{}, false
	}
	return q.ids[0], q.deadlines[0], true
}

// Pop removes and returns the earliest entry.
func (q *timerQueue) Pop() (string, time.Time, bool) {
	if len(q.ids) == 0 {
		return "", time.Time{}, false
	}
	id, t := q.ids[0], q.deadlines[0]
	q.removeAt(0)
	return id, t, true
}

// Remove drops id if it is queued.
func (q *timerQueue) Remove(id string) bool {
	i, ok := q.index[id]
	if !ok {
		return false
	}
	q.removeAt(i)
	return true
}

func (q *timerQueue) removeAt(i int) {
	last := len(q.ids) - 1
	if i != last {
		q.swap(i, last)
	}
	delete(q.index, q.ids[last])
	q.deadlines = q.deadlines[:last]
	q.ids = q.ids[:last]
	if i < last {
		q.down(i)
		q.up(i)
	}
}

func (q *timerQueue) less(i, j int) bool {
	return q.deadlines[i].Before(q.deadlines[j])
}

func (q *timerQueue) swap(i, j int) {
	q.deadlines[i], q.deadlines[j] = q.deadlines[j], q.deadlines[i]
	q.ids[i], q.ids[j] = q.ids[j], q.ids[i]
	q.index[q.ids[i]] = i
	q.index[q.ids[j]] = j
}

func (q *timerQueue) up(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !q.less(i, parent) {
			return
		}
		q.swap(i, parent)
		i = parent
	}
}

func (q *timerQueue) down(i int) {
	n := len(q.ids)
	for {
		smallest := i
		left, right := 2*i+1, 2*i+2
		if left < n && q.less(left, smallest) {
			smallest = left
		}
		if right < n && q.less(right, smallest) {
			smallest = right
		}
		if smallest == i {
			return
		}
		q.swap(i, smallest)
		i = smallest
	}
}
