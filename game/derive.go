package game

// The protocol has no event messages. A correct guess, a wrong guess, a
// skipped word all arrive as nothing but the next full snapshot, so the only
// way to tell the player what just happened is to diff two consecutive
// snapshots for the local identity's own fields. This is the protocol's
// intended contract, not a workaround.

type Event int

const (
	EventNone Event = iota
	EventCorrectGuess
	EventWrongGuess
)

func (e Event) String() string {
	switch e {
	case EventCorrectGuess:
		return "correct_guess"
	case EventWrongGuess:
		return "wrong_guess"
	default:
		return "none"
	}
}

// Verdict is what one snapshot transition meant for the local participant.
// At most one of CorrectGuess/WrongGuess per transition.
type Verdict struct {
	Event Event
	// ClearEntered tells the view to wipe the entered-words buffer; set
	// together with a correct guess.
	ClearEntered bool
	// MissedWord is the word that expired or was skipped without the solo
	// player scoring it; empty otherwise.
	MissedWord string
}

// Derive diffs two consecutive snapshots for localID. The first snapshot of
// a connection only establishes the baseline and never produces an event.
func Derive(prev, curr Snapshot, localID string) Verdict {
	if prev == nil || curr == nil {
		return Verdict{}
	}

	switch c := curr.(type) {
	case *PlayerState:
		p, ok := prev.(*PlayerState)
		if !ok {
			return Verdict{}
		}
		return derivePlayer(p, c, localID)
	case *SoloState:
		p, ok := prev.(*SoloState)
		if !ok {
			return Verdict{}
		}
		return deriveSolo(p, c)
	default:
		// The host has no score of its own; nothing to derive.
		return Verdict{}
	}
}

func derivePlayer(prev, curr *PlayerState, localID string) Verdict {
	prevScore := prev.TeamScores[localID]
	currScore := curr.TeamScores[localID]

	if currScore > prevScore {
		return Verdict{Event: EventCorrectGuess, ClearEntered: true}
	}
	if currScore == prevScore && triesDropped(prev.TriesLeft, curr.TriesLeft) {
		return Verdict{Event: EventWrongGuess}
	}
	return Verdict{}
}

func triesDropped(prev, curr *int) bool {
	if prev == nil || curr == nil {
		return false
	}
	return *curr < *prev
}

func deriveSolo(prev, curr *SoloState) Verdict {
	if curr.Score > prev.Score {
		return Verdict{Event: EventCorrectGuess, ClearEntered: true}
	}
	// Same score but the deadline moved: the word changed under the player
	// (skip or timeout), so reveal what it was.
	if prev.CurrentWord != "" && deadlineChanged(prev, curr) {
		return Verdict{MissedWord: prev.CurrentWord}
	}
	return Verdict{}
}

func deadlineChanged(prev, curr *SoloState) bool {
	pd, pok := prev.Deadline()
	cd, cok := curr.Deadline()
	if pok != cok {
		return true
	}
	return pok && !pd.Equal(cd)
}
