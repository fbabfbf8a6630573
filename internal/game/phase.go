package game

// Phase is a stage of a game. Phases only ever move forward.
type Phase int

const (
	PhaseDealing Phase = iota
	PhaseAccepting
	PhaseDeclaring
	PhaseGameSelection
	PhasePlaying
	PhaseScoring
	PhaseTerminated
)

var phaseNames = [...]string{
	PhaseDealing:       "dealing",
	PhaseAccepting:     "accepting",
	PhaseDeclaring:     "declaring",
	PhaseGameSelection: "game_selection",
	PhasePlaying:       "playing",
	PhaseScoring:       "scoring",
	PhaseTerminated:    "terminated",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// Status is the outcome of Run, used as the process exit status.
type Status int

const (
	StatusCompleted  Status = 0
	StatusNoDeclarer Status = 1
	StatusFailed     Status = 2
)

func (s Status) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusNoDeclarer:
		return "no_declarer"
	default:
		return "failed"
	}
}
