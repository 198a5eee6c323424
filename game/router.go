package game

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

type View int

const (
	ViewSetup View = iota
	ViewLobby
	ViewWordMaster
	ViewGuesser
	ViewHostOverview
	ViewFinished
)

func (v View) String() string {
	switch v {
	case ViewSetup:
		return "setup"
	case ViewLobby:
		return "lobby"
	case ViewWordMaster:
		return "word_master"
	case ViewGuesser:
		return "guesser"
	case ViewHostOverview:
		return "host_overview"
	case ViewFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// RouteView maps (local identity, latest snapshot) to exactly one view.
// A nil snapshot means the connection is up but nothing has arrived yet,
// which is the lobby.
func RouteView(isHost bool, localID string, snap Snapshot) View {
	if snap == nil {
		return ViewLobby
	}
	if snap.Phase() == PhaseFinished {
		return ViewFinished
	}
	if isHost {
		// The host watches the overview whichever team's master is up.
		if snap.Phase() == PhaseInProgress {
			return ViewHostOverview
		}
		return ViewLobby
	}

	switch s := snap.(type) {
	case *PlayerState:
		if s.GameState != PhaseInProgress {
			return ViewLobby
		}
		if s.CurrentMaster == localID {
			return ViewWordMaster
		}
		return ViewGuesser
	case *SoloState:
		if s.GameState != PhaseInProgress {
			return ViewLobby
		}
		return ViewGuesser
	default:
		return ViewLobby
	}
}

// CanSwitchTeam reports whether the team-switch control makes sense: only
// for non-host participants, and only when there is more than one team to
// switch to.
func CanSwitchTeam(isHost bool, snap Snapshot) bool {
	if isHost {
		return false
	}
	s, ok := snap.(*PlayerState)
	if !ok {
		return false
	}
	return len(s.AllTeamsScores) > 1
}

// JoinCodeLength is the length of server-issued join codes.
const JoinCodeLength = 6

var joinCodePattern = regexp.MustCompile(`^[A-Z0-9]+$`)

// NormalizeJoinCode uppercases a typed join code and checks it before any
// socket is opened with it. Returns the canonical code, or a
// *ValidationError naming what is wrong with it.
func NormalizeJoinCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	var problems []string
	if code == "" {
		problems = append(problems, "game code is required")
	} else {
		if len(code) > JoinCodeLength {
			problems = append(problems,
				fmt.Sprintf("game code must be at most %d characters, got %d", JoinCodeLength, len(code)))
		}
		if !joinCodePattern.MatchString(code) {
			problems = append(problems, "game code can only contain letters and numbers")
		}
	}

	if len(problems) > 0 {
		return "", &ValidationError{Problems: problems}
	}
	return code, nil
}

// ValidateStart checks the minimum viable roster before the host may start:
// every team needs at least two players (a word-master plus a guesser), and
// team mode needs at least two teams. Returns a *ValidationError naming each
// problem, never a generic failure.
func ValidateStart(hs *HostState, teamMode bool) error {
	if hs == nil {
		return &ValidationError{Problems: []string{"no lobby state received yet"}}
	}

	var problems []string

	if teamMode && len(hs.Teams) < 2 {
		problems = append(problems, fmt.Sprintf("team mode needs at least 2 teams, got %d", len(hs.Teams)))
	}

	ids := make([]string, 0, len(hs.Teams))
	for id := range hs.Teams {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		team := hs.Teams[id]
		if len(team.Players) < 2 {
			name := team.Name
			if name == "" {
				name = id
			}
			problems = append(problems,
				fmt.Sprintf("team %q needs at least 2 players, has %d", name, len(team.Players)))
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
