package game

import (
	"encoding/json"
	"fmt"
	"time"
)

// The server never sends incremental updates. Every frame is a full state
// snapshot tailored to the receiving role, and each one fully replaces the
// previous.

type Phase string

const (
	PhasePending    Phase = "pending"
	PhaseInProgress Phase = "in_progress"
	PhaseFinished   Phase = "finished"
)

var phaseRank = map[Phase]int{
	PhasePending:    0,
	PhaseInProgress: 1,
	PhaseFinished:   2,
}

func (p Phase) valid() bool {
	_, ok := phaseRank[p]
	return ok
}

type Role string

const (
	RoleHost   Role = "host"
	RolePlayer Role = "player"
	RoleSolo   Role = "solo"
)

type Snapshot interface {
	Phase() Phase
	// Deadline reports the guessing deadline relevant to the local
	// participant, if one is running.
	Deadline() (time.Time, bool)

	isSnapshot()
}

// TeamState is one team as the host sees it.
type TeamState struct {
	Name                string         `json:"name"`
	Players             []string       `json:"players"`
	CurrentWord         string         `json:"current_word"`
	CurrentMaster       string         `json:"current_master"`
	ExpiresAt           *time.Time     `json:"expires_at"`
	Scores              map[string]int `json:"scores"`
	CurrentCorrect      int            `json:"current_correct"`
	RightToAdvance      int            `json:"right_answers_to_advance"`
	RemainingWordsCount int            `json:"remaining_words_count"`
}

type HostState struct {
	GameState   Phase                `json:"game_state"`
	Teams       map[string]TeamState `json:"teams"`
	WinningTeam string               `json:"winning_team"`
}

func (s *HostState) Phase() Phase { return s.GameState }

// The host overview has no countdown of its own; each team runs on its own
// deadline.
func (s *HostState) Deadline() (time.Time, bool) { return time.Time{}, false }

func (s *HostState) isSnapshot() {}

type PlayerState struct {
	GameState           Phase          `json:"game_state"`
	TeamID              string         `json:"team_id"`
	TeamName            string         `json:"team_name"`
	ExpiresAt           *time.Time     `json:"expires_at"`
	CurrentWord         string         `json:"current_word"`
	CurrentMaster       string         `json:"current_master"`
	RemainingWordsCount int            `json:"remaining_words_count"`
	TriesLeft           *int           `json:"tries_left"`
	TeamScores          map[string]int `json:"team_scores"`
	AllTeamsScores      map[string]int `json:"all_teams_scores"`
	PlayersInTeam       []string       `json:"players_in_team"`
	WinningTeam         string         `json:"winning_team"`
}

func (s *PlayerState) Phase() Phase { return s.GameState }

func (s *PlayerState) Deadline() (time.Time, bool) {
	if s.ExpiresAt == nil {
		return time.Time{}, false
	}
	return *s.ExpiresAt, true
}

func (s *PlayerState) isSnapshot() {}

type SoloState struct {
	GameState      Phase      `json:"game_state"`
	Deck           []string   `json:"deck"`
	RemainingWords []string   `json:"remaining_words"`
	CurrentWord    string     `json:"current_word"`
	Clues          []string   `json:"clues"`
	Score          int        `json:"score"`
	ExpiresAt      *time.Time `json:"expires_at"`
}

func (s *SoloState) Phase() Phase { return s.GameState }

func (s *SoloState) Deadline() (time.Time, bool) {
	if s.ExpiresAt == nil {
		return time.Time{}, false
	}
	return *s.ExpiresAt, true
}

func (s *SoloState) isSnapshot() {}

// DecodeSnapshot parses a raw frame into the snapshot shape for the given
// role. Malformed payloads come back as a *ProtocolError; the fields are
// never read optimistically out of an unchecked map.
func DecodeSnapshot(role Role, raw []byte) (Snapshot, error) {
	var snap Snapshot
	switch role {
	case RoleHost:
		s := &HostState{}
		if err := json.Unmarshal(raw, s); err != nil {
			return nil, &ProtocolError{Reason: "malformed host snapshot", Err: err}
		}
		if s.Teams == nil {
			s.Teams = map[string]TeamState{}
		}
		snap = s
	case RolePlayer:
		s := &PlayerState{}
		if err := json.Unmarshal(raw, s); err != nil {
			return nil, &ProtocolError{Reason: "malformed player snapshot", Err: err}
		}
		if s.TeamScores == nil {
			s.TeamScores = map[string]int{}
		}
		if s.AllTeamsScores == nil {
			s.AllTeamsScores = map[string]int{}
		}
		snap = s
	case RoleSolo:
		s := &SoloState{}
		if err := json.Unmarshal(raw, s); err != nil {
			return nil, &ProtocolError{Reason: "malformed solo snapshot", Err: err}
		}
		snap = s
	default:
		return nil, &ProtocolError{Reason: fmt.Sprintf("unknown role %q", role)}
	}

	if !snap.Phase().valid() {
		return nil, &ProtocolError{Reason: fmt.Sprintf("unknown game state %q", snap.Phase())}
	}
	return snap, nil
}

// Store keeps the single most recent snapshot for one connection. Snapshots
// replace, never patch. The one snapshot of history exists only so the event
// deriver can diff against it.
type Store struct {
	role Role
	prev Snapshot
	curr Snapshot
}

func NewStore(role Role) *Store {
	return &Store{role: role}
}

// Ingest decodes a frame, checks that the game state has not moved
// backwards, and installs it as the newest snapshot.
func (st *Store) Ingest(raw []byte) (Snapshot, error) {
	snap, err := DecodeSnapshot(st.role, raw)
	if err != nil {
		return nil, err
	}
	if st.curr != nil && phaseRank[snap.Phase()] < phaseRank[st.curr.Phase()] {
		return nil, &ProtocolError{
			Reason: fmt.Sprintf("game state moved backwards: %s after %s", snap.Phase(), st.curr.Phase()),
		}
	}
	st.prev = st.curr
	st.curr = snap
	return snap, nil
}

// Seed installs an initial snapshot handed over from a previous page without
// creating a diffable predecessor.
func (st *Store) Seed(snap Snapshot) {
	if snap == nil {
		return
	}
	st.prev = nil
	st.curr = snap
}

// Reset drops all history. Called after a reconnect: the fresh connection's
// first snapshot supersedes everything and must not be diffed against stale
// state.
func (st *Store) Reset() {
	st.prev = nil
	st.curr = nil
}

func (st *Store) Current() Snapshot  { return st.curr }
func (st *Store) Previous() Snapshot { return st.prev }
