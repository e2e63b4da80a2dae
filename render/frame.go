package render

// FrameID identifies a requested frame callback.
type FrameID uint64

// FrameRequester schedules callbacks for the next frame, like requestAnimationFrame.
type FrameRequester interface {
	RequestFrame(fn func()) FrameID
	CancelFrame(id FrameID)
}

type frameCallback struct {
	id FrameID
	fn func()
}

// FrameQueue is a FrameRequester driven by the host's event loop: the host calls Tick once per frame it draws.
// Callbacks requested while a Tick is running run in the next Tick.
type FrameQueue struct {
	// OnRequest, if set, is called whenever a callback gets queued while none were pending. Hosts use it to
	// invalidate their window.
	OnRequest func()

	next    FrameID
	pending []frameCallback
	running []frameCallback
}

func (q *FrameQueue) RequestFrame(fn func()) FrameID {
	q.next++
	wasEmpty := len(q.pending) == 0
	q.pending = append(q.pending, frameCallback{id: q.next, fn: fn})
	if wasEmpty && q.OnRequest != nil {
		q.OnRequest()
	}
	return q.next
}

func (q *FrameQueue) CancelFrame(id FrameID) {
	for i, cb := range q.pending {
		if cb.id == id {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return
		}
	}
}

// Pending reports whether any callbacks are waiting for the next Tick.
func (q *FrameQueue) Pending() bool { return len(q.pending) > 0 }

// Tick runs all callbacks that were requested before the call, in request order, and returns how many ran.
func (q *FrameQueue) Tick() int {
	q.running, q.pending = q.pending, q.running[:0]
	for _, cb := range q.running {
		cb.fn()
	}
	n := len(q.running)
	clear(q.running)
	q.running = q.running[:0]
	return n
}

// SchedulerState describes which frames a Canvas has scheduled. A full and a partial frame may be pending at the
// same time.
type SchedulerState uint8

const (
	Idle           SchedulerState = 0
	FullPending    SchedulerState = 1 << 0
	PartialPending SchedulerState = 1 << 1
)

func (st SchedulerState) String() string {
	switch st {
	case Idle:
		return "idle"
	case FullPending:
		return "full pending"
	case PartialPending:
		return "partial pending"
	case FullPending | PartialPending:
		return "full and partial pending"
	default:
		return "invalid"
	}
}
