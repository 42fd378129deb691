package types

// Resolution represents the outcome state of a dispatched call
type Resolution string

const (
	ResolutionPending  Resolution = "pending"
	ResolutionAccepted Resolution = "accepted"
	ResolutionDeclined Resolution = "declined"
)

// ResolutionFor maps a staff accept/decline decision to its terminal state
func ResolutionFor(accepted bool) Resolution {
	if accepted {
		return ResolutionAccepted
	}
	return ResolutionDeclined
}
