package scaling

// Action represents a scaling decision action.
type Action string

const (
	// ActionScaleUp indicates one worker should be added.
	ActionScaleUp Action = "scale_up"

	// ActionScaleDown indicates one idle worker should be removed.
	ActionScaleDown Action = "scale_down"

	// ActionNone indicates no scaling change is needed or allowed.
	ActionNone Action = "none"
)

// String returns the string representation of the action.
func (a Action) String() string {
	return string(a)
}

// Decision is the result of evaluating the scaling policy against the
// current queue depth and pool size.
type Decision struct {
	// Action is the recommended scaling action.
	Action Action

	// Delta is +1 for scale up, -1 for scale down, 0 otherwise.
	Delta int

	// Reason is a human-readable explanation of the decision.
	Reason string

	// Cooldown is true when the decision was a hold because the cooldown
	// had not elapsed. Thresholds were not evaluated in that case.
	Cooldown bool
}
