package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func intp(n int) *int { return &n }

func playerSnap(score int, tries *int) *PlayerState {
	return &PlayerState{
		GameState:  PhaseInProgress,
		TeamScores: map[string]int{"alice": score, "bob": 9},
		TriesLeft:  tries,
	}
}

func TestDerive_Player(t *testing.T) {
	tests := []struct {
		desc string
		prev Snapshot
		curr Snapshot
		want Verdict
	}{
		{
			desc: "own score went up",
			prev: playerSnap(2, intp(3)),
			curr: playerSnap(3, intp(3)),
			want: Verdict{Event: EventCorrectGuess, ClearEntered: true},
		},
		{
			desc: "score flat but a try was burned",
			prev: playerSnap(2, intp(3)),
			curr: playerSnap(2, intp(2)),
			want: Verdict{Event: EventWrongGuess},
		},
		{
			desc: "nothing changed",
			prev: playerSnap(2, intp(3)),
			curr: playerSnap(2, intp(3)),
			want: Verdict{},
		},
		{
			desc: "score up and tries down is still just a correct guess",
			prev: playerSnap(2, intp(3)),
			curr: playerSnap(3, intp(2)),
			want: Verdict{Event: EventCorrectGuess, ClearEntered: true},
		},
		{
			desc: "tries reset upward means a new word, not an event",
			prev: playerSnap(2, intp(0)),
			curr: playerSnap(2, intp(3)),
			want: Verdict{},
		},
		{
			desc: "nil tries on either side never counts as a wrong guess",
			prev: playerSnap(2, nil),
			curr: playerSnap(2, intp(2)),
			want: Verdict{},
		},
		{
			desc: "first snapshot is baseline only",
			prev: nil,
			curr: playerSnap(5, intp(1)),
			want: Verdict{},
		},
		{
			desc: "role changed mid-session yields nothing",
			prev: &SoloState{GameState: PhaseInProgress, Score: 1},
			curr: playerSnap(5, intp(1)),
			want: Verdict{},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()
			got := Derive(tc.prev, tc.curr, "alice")
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDerive_TeammateScoreDoesNotFireForLocal(t *testing.T) {
	prev := playerSnap(2, intp(3))
	curr := playerSnap(2, intp(3))
	curr.TeamScores["bob"] = 10

	assert.Equal(t, Verdict{}, Derive(prev, curr, "alice"))
}

func soloSnap(score int, word string, deadline time.Time) *SoloState {
	s := &SoloState{GameState: PhaseInProgress, Score: score, CurrentWord: word}
	if !deadline.IsZero() {
		s.ExpiresAt = &deadline
	}
	return s
}

func TestDerive_Solo(t *testing.T) {
	d1 := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	d2 := d1.Add(time.Minute)

	tests := []struct {
		desc string
		prev *SoloState
		curr *SoloState
		want Verdict
	}{
		{
			desc: "scored, word advanced",
			prev: soloSnap(1, "engine", d1),
			curr: soloSnap(2, "forest", d2),
			want: Verdict{Event: EventCorrectGuess, ClearEntered: true},
		},
		{
			desc: "deadline moved with no score means the word was missed",
			prev: soloSnap(1, "engine", d1),
			curr: soloSnap(1, "forest", d2),
			want: Verdict{MissedWord: "engine"},
		},
		{
			desc: "same word same deadline",
			prev: soloSnap(1, "engine", d1),
			curr: soloSnap(1, "engine", d1),
			want: Verdict{},
		},
		{
			desc: "deadline cleared at game end reveals the last word",
			prev: soloSnap(1, "engine", d1),
			curr: soloSnap(1, "", time.Time{}),
			want: Verdict{MissedWord: "engine"},
		},
		{
			desc: "no previous word, nothing to reveal",
			prev: soloSnap(0, "", time.Time{}),
			curr: soloSnap(0, "engine", d1),
			want: Verdict{},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()
			got := Derive(tc.prev, tc.curr, "solo")
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDerive_HostNeverFires(t *testing.T) {
	prev := &HostState{GameState: PhaseInProgress}
	curr := &HostState{GameState: PhaseInProgress}
	assert.Equal(t, Verdict{}, Derive(prev, curr, "host"))
}

// Whatever the transition, a single diff can mean at most one of
// correct/wrong for the local player.
func TestDerive_AtMostOneEvent(t *testing.T) {
	scores := []int{0, 1, 2}
	tries := []*int{nil, intp(0), intp(1), intp(3)}

	for _, ps := range scores {
		for _, cs := range scores {
			for _, pt := range tries {
				for _, ct := range tries {
					v := Derive(playerSnap(ps, pt), playerSnap(cs, ct), "alice")
					if v.Event == EventCorrectGuess {
						assert.True(t, v.ClearEntered)
					}
					if v.Event == EventWrongGuess {
						assert.False(t, v.ClearEntered)
					}
				}
			}
		}
	}
}
