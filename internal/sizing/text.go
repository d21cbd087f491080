package sizing

import (
	"encoding/json"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
)

// TextPayload is the payload of text-like events.
type TextPayload struct {
	Text   string `json:"text"`
	Format string `json:"format,omitempty"` // "plain" (default) or "html"
}

// PlainText returns the text to lay out. HTML bodies are converted to
// markdown first so tags don't count towards the width.
func (p TextPayload) PlainText() string {
	if !strings.EqualFold(p.Format, "html") {
		return p.Text
	}
	md, err := htmltomarkdown.ConvertString(p.Text)
	if err != nil {
		return p.Text
	}
	return strings.TrimSpace(md)
}

// TextMeasurer sizes a chat bubble holding wrapped text.
type TextMeasurer struct {
	Metrics Metrics
}

func (t *TextMeasurer) Measure(payload json.RawMessage, width float64) float64 {
	var p TextPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		// Bare JSON strings are accepted as plain text.
		if err := json.Unmarshal(payload, &p.Text); err != nil {
			p.Text = ""
		}
	}
	cols := t.Metrics.columns(width * t.Metrics.BubbleFraction)
	lines := wrappedLines(p.PlainText(), cols)
	return float64(lines)*t.Metrics.LineHeight + t.Metrics.BubblePaddingY
}

// wrappedLines counts the lines text occupies at cols cells per line. Words
// wrap at spaces; words longer than a line are hard-broken.
func wrappedLines(text string, cols int) int {
	if cols < 1 {
		cols = 1
	}
	if text == "" {
		return 1
	}
	if !strings.Contains(text, "\n") && runewidth.StringWidth(text) <= cols {
		return 1
	}
	wrapped := wrap.String(wordwrap.String(text, cols), cols)
	return strings.Count(strings.TrimRight(wrapped, "\n"), "\n") + 1
}
