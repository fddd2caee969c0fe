package stage

// Stage is one of the three time-boxed event phases. The phases gate which
// write operations are accepted and which ranking formula applies.
type Stage string

const (
	// StageLock is the initial phase: the roster is frozen, traffic still
	// accumulates, no investments are accepted.
	StageLock Stage = "lock"
	// StageInvestment is the phase during which investors may commit capital.
	StageInvestment Stage = "investment"
	// StageEnded is terminal: traffic and capital are frozen, rankings are final.
	StageEnded Stage = "ended"
)

// order maps each stage to its position in the normal forward progression.
var order = map[Stage]int{
	StageLock:       0,
	StageInvestment: 1,
	StageEnded:      2,
}

var names = map[Stage]string{
	StageLock:       "Lock",
	StageInvestment: "Investment",
	StageEnded:      "Ended",
}

var timeWindows = map[Stage]string{
	StageLock:       "Nov 7 12:00 - Nov 14 0:00",
	StageInvestment: "Nov 14 0:00 - 18:00",
	StageEnded:      "after Nov 14 18:00",
}

// Parse validates a stage code.
func Parse(code string) (Stage, error) {
	s := Stage(code)
	if _, ok := order[s]; !ok {
		return "", ErrUnknownStage
	}
	return s, nil
}

// Valid reports whether s is a known stage code.
func (s Stage) Valid() bool {
	_, ok := order[s]
	return ok
}

// Name returns the display name of the stage.
func (s Stage) Name() string {
	return names[s]
}

// TimeWindow returns the human-readable schedule for the stage.
func (s Stage) TimeWindow() string {
	return timeWindows[s]
}

// CanInvest reports whether investment writes are accepted during s.
func (s Stage) CanInvest() bool {
	return s == StageInvestment
}

// AllowsTrafficSync reports whether unique-visitor updates are accepted
// during s. Traffic freezes once the event ends.
func (s Stage) AllowsTrafficSync() bool {
	return s == StageLock || s == StageInvestment
}

// CanTransitionTo reports whether moving from s to target is a forward
// transition. Backward moves require an administrative override.
func (s Stage) CanTransitionTo(target Stage) bool {
	from, ok := order[s]
	if !ok {
		return false
	}
	to, ok := order[target]
	if !ok {
		return false
	}
	return to > from
}
