package coordinator

import (
	"context"
	"sync"
)

// admission is a slot pool with priority classes. High-priority acquisitions
// bypass waiting low/normal ones; within a class, grants are FIFO.
type admission struct {
	mu   sync.Mutex
	free int
	q    [3][]chan struct{} // waiting tickets indexed by Priority
}

func newAdmission(slots int) *admission {
	if slots < 1 {
		slots = 1
	}
	return &admission{free: slots}
}

// acquire blocks until a slot is granted or ctx fires.
func (a *admission) acquire(ctx context.Context, prio Priority) error {
	if prio < PriorityLow || prio > PriorityHigh {
		prio = PriorityNormal
	}

	a.mu.Lock()
	if a.free > 0 {
		a.free--
		a.mu.Unlock()
		return nil
	}
	ticket := make(chan struct{})
	a.q[prio] = append(a.q[prio], ticket)
	a.mu.Unlock()

	select {
	case <-ticket:
		return nil
	case <-ctx.Done():
		a.mu.Lock()
		removed := false
		for i, t := range a.q[prio] {
			if t == ticket {
				a.q[prio] = append(a.q[prio][:i], a.q[prio][i+1:]...)
				removed = true
				break
			}
		}
		a.mu.Unlock()
		if !removed {
			// Grant raced with cancellation: the slot is ours, hand it on.
			a.release()
		}
		return ctx.Err()
	}
}

// release hands the slot to the highest-priority waiter, or returns it to
// the pool.
func (a *admission) release() {
	a.mu.Lock()
	for p := PriorityHigh; p >= PriorityLow; p-- {
		if len(a.q[p]) > 0 {
			ticket := a.q[p][0]
			a.q[p] = a.q[p][1:]
			a.mu.Unlock()
			close(ticket)
			return
		}
	}
	a.free++
	a.mu.Unlock()
}
