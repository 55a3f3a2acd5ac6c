package ledger

import "sync"

// Notifier fans out appended entry IDs on a bounded channel with a
// drop-oldest backpressure policy: a slow consumer loses the oldest
// notifications, and Publish never blocks an append.
type Notifier struct {
	mu      sync.Mutex
	ch      chan string
	dropped uint64
}

func NewNotifier(size int) *Notifier {
	if size <= 0 {
		size = 64
	}
	return &Notifier{ch: make(chan string, size)}
}

// Publish queues an entry ID, evicting the oldest queued ID if full.
func (n *Notifier) Publish(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for {
		select {
		case n.ch <- id:
			return
		default:
			select {
			case <-n.ch:
				n.dropped++
			default:
			}
		}
	}
}

// C is the receive side for consumers.
func (n *Notifier) C() <-chan string {
	return n.ch
}

// Dropped reports how many notifications were evicted so far.
func (n *Notifier) Dropped() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.dropped
}
