// Command replay plays a sequence of moves from the initial position and
// prints the resulting board. Moves are written file,rank-file,rank with
// 1-based coordinates, e.g. 5,2-5,4. Sides alternate starting with White;
// rejected moves are reported and do not consume a turn.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/benbeisheim/chess-server/internal/model"
	"github.com/benbeisheim/chess-server/internal/render"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	state := model.NewGameState()
	for _, arg := range os.Args[1:] {
		from, to, err := parseMove(arg)
		if err != nil {
			log.Fatal().Err(err).Str("move", arg).Msg("bad move")
		}
		if _, err := state.SubmitMove(state.Turn, from, to); err != nil {
			log.Warn().Err(err).Str("move", arg).Msg("rejected")
		}
	}
	render.Terminal(os.Stdout, state.Snapshot())
}

func parseMove(s string) (model.Position, model.Position, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return model.Position{}, model.Position{}, fmt.Errorf("want from-to, got %q", s)
	}
	from, err := parseSquare(parts[0])
	if err != nil {
		return model.Position{}, model.Position{}, err
	}
	to, err := parseSquare(parts[1])
	if err != nil {
		return model.Position{}, model.Position{}, err
	}
	return from, to, nil
}

func parseSquare(s string) (model.Position, error) {
	f, r, ok := strings.Cut(s, ",")
	if !ok {
		return model.Position{}, fmt.Errorf("want file,rank, got %q", s)
	}
	file, err := strconv.Atoi(strings.TrimSpace(f))
	if err != nil {
		return model.Position{}, fmt.Errorf("file %q: %w", f, err)
	}
	rank, err := strconv.Atoi(strings.TrimSpace(r))
	if err != nil {
		return model.Position{}, fmt.Errorf("rank %q: %w", r, err)
	}
	return model.Square{file, rank}.Position()
}
