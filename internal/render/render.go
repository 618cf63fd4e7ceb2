// Package render draws board snapshots for humans: SVG for browsers and ANSI
// text for terminals.
package render

import (
	"fmt"
	"io"
	"strings"

	svg "github.com/ajstarks/svgo"
	"github.com/benbeisheim/chess-server/internal/model"
	"github.com/fatih/color"
)

var glyphs = map[model.PlayerColor]map[model.PieceType]string{
	model.PlayerColorWhite: {
		model.King: "♔", model.Queen: "♕", model.Rook: "♖",
		model.Bishop: "♗", model.Knight: "♘", model.Pawn: "♙",
	},
	model.PlayerColorBlack: {
		model.King: "♚", model.Queen: "♛", model.Rook: "♜",
		model.Bishop: "♝", model.Knight: "♞", model.Pawn: "♟",
	},
}

var letters = map[model.PieceType]string{
	model.King: "K", model.Queen: "Q", model.Rook: "R",
	model.Bishop: "B", model.Knight: "N", model.Pawn: "P",
}

const (
	lightSquare = "fill:#f0d9b5"
	darkSquare  = "fill:#b58863"
)

// SVG writes a size×size drawing of snap with White at the bottom.
func SVG(w io.Writer, snap model.BoardSnapshot, size int) {
	if size < 8 {
		size = 8
	}
	cell := size / 8
	canvas := svg.New(w)
	canvas.Start(cell*8, cell*8)
	for rank := 8; rank >= 1; rank-- {
		for file := 1; file <= 8; file++ {
			x, y := (file-1)*cell, (8-rank)*cell
			style := lightSquare
			if (file+rank)%2 == 0 {
				style = darkSquare
			}
			canvas.Rect(x, y, cell, cell, style)
			if p, ok := snap.At(model.Square{file, rank}); ok {
				canvas.Text(x+cell/2, y+cell*3/4, glyphs[p.Color][p.Type],
					fmt.Sprintf("text-anchor:middle;font-size:%dpx", cell*3/4))
			}
		}
	}
	canvas.End()
}

// Terminal writes snap as an 8×8 grid, rank 8 first. White pieces are upper
// case, Black lower case; colour is added when w is a terminal.
func Terminal(w io.Writer, snap model.BoardSnapshot) {
	white := color.New(color.FgHiWhite, color.Bold)
	black := color.New(color.FgRed, color.Bold)
	dim := color.New(color.FgHiBlack)

	var sb strings.Builder
	for rank := 8; rank >= 1; rank-- {
		fmt.Fprintf(&sb, "%d ", rank)
		for file := 1; file <= 8; file++ {
			p, ok := snap.At(model.Square{file, rank})
			switch {
			case !ok:
				sb.WriteString(dim.Sprint(". "))
			case p.Color == model.PlayerColorWhite:
				sb.WriteString(white.Sprint(letters[p.Type] + " "))
			default:
				sb.WriteString(black.Sprint(strings.ToLower(letters[p.Type]) + " "))
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString("  1 2 3 4 5 6 7 8\n")
	fmt.Fprintf(&sb, "%s to move", snap.Turn)
	if snap.Check {
		sb.WriteString(" (check)")
	}
	sb.WriteString("\n")
	io.WriteString(w, sb.String())
}
