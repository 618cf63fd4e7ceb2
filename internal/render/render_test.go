package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/benbeisheim/chess-server/internal/model"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestTerminalInitialPosition(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	Terminal(&buf, model.NewGameState().Snapshot())

	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, "8 r n b q k b n r ", lines[0])
	assert.Equal(t, "7 p p p p p p p p ", lines[1])
	assert.Equal(t, "4 . . . . . . . . ", lines[4])
	assert.Equal(t, "1 R N B Q K B N R ", lines[7])
	assert.Equal(t, "white to move", lines[9])
}

func TestSVGDrawsEveryLivePiece(t *testing.T) {
	var buf bytes.Buffer
	SVG(&buf, model.NewGameState().Snapshot(), 400)

	out := buf.String()
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "<?xml"))
	assert.Equal(t, 64, strings.Count(out, "<rect"))
	assert.Equal(t, 8, strings.Count(out, "♙"))
	assert.Equal(t, 1, strings.Count(out, "♚"))
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "</svg>"))
}
