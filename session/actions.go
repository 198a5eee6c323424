package session

// Outbound actions are stateless fire-and-forget commands. Nothing
// correlates them with the snapshots that come back.

type Action struct {
	Action    string `json:"action"`
	Guess     string `json:"guess,omitempty"`
	NewTeamID string `json:"new_team_id,omitempty"`
}

const (
	ActionStartGame  = "start_game"
	ActionGuess      = "guess"
	ActionSkip       = "skip"
	ActionSwitchTeam = "switch_team"
	ActionStopGame   = "stop_game"
)

func StartGame() Action { return Action{Action: ActionStartGame} }

func Guess(word string) Action { return Action{Action: ActionGuess, Guess: word} }

func Skip() Action { return Action{Action: ActionSkip} }

func SwitchTeam(teamID string) Action { return Action{Action: ActionSwitchTeam, NewTeamID: teamID} }

func StopGame() Action { return Action{Action: ActionStopGame} }
