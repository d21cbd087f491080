// Package fixture reads JSONL transcript scripts: one operation per line,
// replayed against a ViewSync in order.
//
//	{"op":"set","events":[...]}
//	{"op":"merge","events":[...]}
//	{"op":"append","event":{...}}
//	{"op":"update","event":{...}}
//	{"op":"typing","typing":true,"preview":"..."}
//	{"op":"toggle","seq":3}
//	{"op":"width","width":375}
//
// A line without "op" is a bare event and is appended, so a plain event log
// replays as a live stream. Blank lines and lines starting with # are skipped.
package fixture

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/user/transcript/internal/types"
	"github.com/user/transcript/internal/viewsync"
)

type Op string

const (
	OpSet    Op = "set"
	OpMerge  Op = "merge"
	OpAppend Op = "append"
	OpUpdate Op = "update"
	OpTyping Op = "typing"
	OpToggle Op = "toggle"
	OpWidth  Op = "width"
)

// Step is one line of a script.
type Step struct {
	Op      Op             `json:"op"`
	Event   *types.Event   `json:"event,omitempty"`
	Events  []*types.Event `json:"events,omitempty"`
	Typing  bool           `json:"typing,omitempty"`
	Preview string         `json:"preview,omitempty"`
	Seq     int64          `json:"seq,omitempty"`
	Width   float64        `json:"width,omitempty"`

	// Line is the 1-based source line.
	Line int `json:"-"`
}

// ReadFile reads a script from path.
func ReadFile(path string) ([]Step, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses a script.
func Read(r io.Reader) ([]Step, error) {
	var steps []Step
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		step, err := parseLine([]byte(text))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		step.Line = line
		steps = append(steps, step)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan fixture: %w", err)
	}
	return steps, nil
}

func parseLine(data []byte) (Step, error) {
	var step Step
	if err := json.Unmarshal(data, &step); err != nil {
		return Step{}, fmt.Errorf("unmarshal step: %w", err)
	}
	if step.Op == "" {
		var event types.Event
		if err := json.Unmarshal(data, &event); err != nil {
			return Step{}, fmt.Errorf("unmarshal event: %w", err)
		}
		return Step{Op: OpAppend, Event: &event}, nil
	}

	switch step.Op {
	case OpAppend, OpUpdate:
		if step.Event == nil {
			return Step{}, fmt.Errorf("%s step requires an event", step.Op)
		}
	case OpSet, OpMerge, OpTyping, OpToggle, OpWidth:
	default:
		return Step{}, fmt.Errorf("unknown op %q", step.Op)
	}
	return step, nil
}

// Apply runs step against v.
func Apply(v *viewsync.ViewSync, step Step) {
	switch step.Op {
	case OpSet:
		v.SetEvents(step.Events)
	case OpMerge:
		v.MergeEvents(step.Events)
	case OpAppend:
		v.AppendLiveEvent(step.Event)
	case OpUpdate:
		v.UpdateEvent(step.Event)
	case OpTyping:
		v.SetTyping(step.Typing, step.Preview)
	case OpToggle:
		v.ToggleDetailForEvent(step.Seq)
	case OpWidth:
		v.SetWidth(step.Width)
	}
}
