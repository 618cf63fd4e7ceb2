package model

type PlayerColor string

const (
	PlayerColorWhite PlayerColor = "white"
	PlayerColorBlack PlayerColor = "black"
)

func (c PlayerColor) Valid() bool {
	return c == PlayerColorWhite || c == PlayerColorBlack
}

func (c PlayerColor) Opponent() PlayerColor {
	if c == PlayerColorWhite {
		return PlayerColorBlack
	}
	return PlayerColorWhite
}

type Player struct {
	ID    string
	Color PlayerColor
}

// ClientPlayer is one seat. The id stays server side: a client knowing another
// player's id must not be able to claim that seat.
type ClientPlayer struct {
	ID     string      `json:"-"`
	Color  PlayerColor `json:"color"`
	Seated bool        `json:"seated"`
}
