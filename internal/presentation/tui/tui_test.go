package tui

import (
	"bytes"
	"testing"
	"time"

	"github.com/aretw0/fernspiel/pkg/book"
	"github.com/aretw0/fernspiel/pkg/domain"
	"github.com/aretw0/fernspiel/pkg/sound"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribeBook(t *testing.T) {
	b, err := book.New("doorbell").
		Sound("bell", sound.Definition{File: "bell.ogg", Loop: true}).
		Sound("hello", sound.Definition{Speech: "Who is there"}).
		State("ring").Ring(2*time.Second).Sounds("bell").
		Timeout(20*time.Second, "gone").On(domain.InputPickUp, "talk").
		State("talk").Sounds("hello").End("gone").Dial(0, "ring").
		State("gone").Terminal().
		Build()
	require.NoError(t, err)

	md := DescribeBook(b)

	assert.Contains(t, md, "# doorbell")
	assert.Contains(t, md, "3 states, 2 sounds. Starts at `ring`.")
	assert.Contains(t, md, "| bell | bell.ogg | 0s | yes |")
	assert.Contains(t, md, `| hello | speech: "Who is there" | 1.2s |  |`)
	assert.Contains(t, md, "| ring | bell | 2s | 20s → gone |  | pick_up → talk |")
	assert.Contains(t, md, "| talk | hello |  |  | gone | 0 → ring |")
	assert.Contains(t, md, "| gone (terminal) |  |  |  |  |  |")
}

func TestRenderer(t *testing.T) {
	render, err := NewRenderer(80)
	require.NoError(t, err)

	out, err := render("# Title\n\nsome text")
	require.NoError(t, err)
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "some text")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "1.2.3")
	assert.Contains(t, buf.String(), "v1.2.3")
	assert.Contains(t, buf.String(), "|_|  \\___|_|")
}
