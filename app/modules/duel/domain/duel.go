// Package dueldomain holds the pure rules of a head-to-head challenge.
package dueldomain

// State is where a challenge is in its lifecycle.
type State string

const (
	StatePendingAccept  State = "PENDING_ACCEPT"
	StateAccepted       State = "ACCEPTED"
	StateCompleted      State = "COMPLETED"
	StatePointsAssigned State = "POINTS_ASSIGNED"
)

// StateOf derives the lifecycle state from the persisted flags.
func StateOf(accepted, completed, pointsAssigned bool) State {
	switch {
	case pointsAssigned:
		return StatePointsAssigned
	case completed:
		return StateCompleted
	case accepted:
		return StateAccepted
	default:
		return StatePendingAccept
	}
}

// Side names a participant.
type Side int

const (
	SideNone Side = iota
	SideChallenger
	SideOpponent
)

// Outcome is the decision for a pair of reported attempt counts.
type Outcome struct {
	Ready  bool
	Tie    bool
	Winner Side
}

// Decide compares the reported attempt counts. Fewer attempts wins; equal
// counts tie. Until both sides have reported nothing is decided.
func Decide(challengerAttempts, opponentAttempts *int) Outcome {
	if challengerAttempts == nil || opponentAttempts == nil {
		return Outcome{}
	}
	c, o := *challengerAttempts, *opponentAttempts
	switch {
	case c == o:
		return Outcome{Ready: true, Tie: true}
	case c < o:
		return Outcome{Ready: true, Winner: SideChallenger}
	default:
		return Outcome{Ready: true, Winner: SideOpponent}
	}
}
