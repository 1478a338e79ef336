package checkout

// State is the lifecycle state of one checkout attempt.
type State string

const (
	StateIdle            State = "idle"
	StateSubmitting      State = "submitting"
	StateOrderCreated    State = "order_created"
	StateAwaitingPayment State = "awaiting_payment"
	StateCompleted       State = "completed"
	StateFailed          State = "failed"
)

var transitions = map[State][]State{
	StateIdle:            {StateSubmitting, StateAwaitingPayment, StateCompleted},
	StateSubmitting:      {StateOrderCreated},
	StateOrderCreated:    {StateCompleted, StateAwaitingPayment},
	StateAwaitingPayment: {StateCompleted, StateIdle},
	StateCompleted:       {StateSubmitting, StateAwaitingPayment, StateCompleted},
	StateFailed:          {StateSubmitting, StateAwaitingPayment, StateCompleted, StateIdle},
}

// CanTransitionTo reports whether the attempt may move from s to next.
// Every state may fail.
func (s State) CanTransitionTo(next State) bool {
	if next == StateFailed {
		return true
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Resubmittable reports whether a new form submission may start from s.
func (s State) Resubmittable() bool {
	return s.CanTransitionTo(StateSubmitting)
}

func (s State) String() string {
	return string(s)
}
