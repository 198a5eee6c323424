// Package httpapi wraps the plain request/response endpoints around a game:
// creating one, and the leaderboard/deck calls that only matter once a game
// is finished. The realtime protocol itself lives in session and game.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"
)

type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient takes the HTTP base URL, e.g. "http://localhost:8000/api".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// CreateGameRequest mirrors the create endpoint's body. Zero values are
// omitted and the server falls back to its defaults.
type CreateGameRequest struct {
	Words          []string `json:"remaining_words"`
	WordsAmount    int      `json:"words_amount,omitempty"`
	TriesPerPlayer int      `json:"tries_per_player,omitempty"`
	RightToAdvance int      `json:"right_answers_to_advance,omitempty"`
	GuessingSec    int      `json:"time_for_guessing,omitempty"`
	RotateMasters  bool     `json:"rotate_masters"`
	TeamCount      int      `json:"team_count,omitempty"`
}

// CreateGame registers a new game and returns the join code used to open
// the sockets.
func (c *Client) CreateGame(ctx context.Context, req CreateGameRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/game/create", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("create game: unexpected status %d", resp.StatusCode)
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// TeamScore is one leaderboard row.
type TeamScore struct {
	Team  string
	Score int
}

// Leaderboard fetches the final standings, highest score first.
func (c *Client) Leaderboard(ctx context.Context, code string) ([]TeamScore, error) {
	var scores map[string]int
	if err := c.getJSON(ctx, "/game/leaderboard/"+code, &scores); err != nil {
		return nil, err
	}

	rows := make([]TeamScore, 0, len(scores))
	for team, score := range scores {
		rows = append(rows, TeamScore{Team: team, Score: score})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		return rows[i].Team < rows[j].Team
	})
	return rows, nil
}

// Deck fetches the full word list of a game.
func (c *Client) Deck(ctx context.Context, code string) ([]string, error) {
	var out struct {
		Words []string `json:"words"`
	}
	if err := c.getJSON(ctx, "/game/deck/"+code, &out); err != nil {
		return nil, err
	}
	return out.Words, nil
}

// ExportDeck downloads the deck as plain text, one word per line.
func (c *Client) ExportDeck(ctx context.Context, code string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/game/leaderboard/"+code+"/export", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("export deck: unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// DeleteGame removes a finished game.
func (c *Client) DeleteGame(ctx context.Context, code string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/game/delete/"+code, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("delete game: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
