package model

import "time"

// WSMove is the payload of a move message. IDToken may be empty when the
// connection was opened with a token.
type WSMove struct {
	IDToken string `json:"idToken,omitempty"`
	From    Square `json:"from"`
	To      Square `json:"to"`
}

// Positions converts both squares to internal positions.
func (m WSMove) Positions() (Position, Position, error) {
	from, err := m.From.Position()
	if err != nil {
		return Position{}, Position{}, err
	}
	to, err := m.To.Position()
	if err != nil {
		return Position{}, Position{}, err
	}
	return from, to, nil
}

const ResultResignation = "resignation"

// Result describes how a match ended.
type Result struct {
	GameID  string      `json:"gameId"`
	Winner  PlayerColor `json:"winner"`
	Reason  string      `json:"reason"`
	White   string      `json:"white"`
	Black   string      `json:"black"`
	EndedAt time.Time   `json:"endedAt"`
}
