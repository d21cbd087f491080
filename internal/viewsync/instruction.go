package viewsync

import (
	"fmt"

	"github.com/user/transcript/internal/types"
)

// Op is one list-surface instruction kind.
type Op int

const (
	OpResetAll Op = iota
	OpInsertRow
	OpInsertSection
	OpReloadRow
	OpScrollTo
	OpAnimateRow
	OpCollapseDetail
	OpExpandDetail
)

var opNames = [...]string{
	OpResetAll:       "resetAll",
	OpInsertRow:      "insertRow",
	OpInsertSection:  "insertSection",
	OpReloadRow:      "reloadRow",
	OpScrollTo:       "scrollTo",
	OpAnimateRow:     "animateRow",
	OpCollapseDetail: "collapseDetail",
	OpExpandDetail:   "expandDetail",
}

func (o Op) String() string {
	if o < 0 || int(o) >= len(opNames) {
		return fmt.Sprintf("Op(%d)", int(o))
	}
	return opNames[o]
}

// Instruction tells the host list how to change. Section and Row are in
// render coordinates, which include the typing indicator row.
type Instruction struct {
	Op       Op         `json:"op"`
	Section  int        `json:"section"`
	Row      int        `json:"row"`
	Edge     types.Edge `json:"edge,omitempty"`
	Animated bool       `json:"animated,omitempty"`
}

func (i Instruction) String() string {
	switch i.Op {
	case OpResetAll:
		return "resetAll"
	case OpInsertSection:
		return fmt.Sprintf("insertSection(%d)", i.Section)
	case OpScrollTo:
		return fmt.Sprintf("scrollTo(%d,%d,%s)", i.Section, i.Row, i.Edge)
	default:
		return fmt.Sprintf("%s(%d,%d)", i.Op, i.Section, i.Row)
	}
}

func ResetAll() Instruction {
	return Instruction{Op: OpResetAll}
}

func InsertRow(p types.Position) Instruction {
	return Instruction{Op: OpInsertRow, Section: p.Section, Row: p.Row}
}

func InsertSection(section int) Instruction {
	return Instruction{Op: OpInsertSection, Section: section}
}

func ReloadRow(p types.Position) Instruction {
	return Instruction{Op: OpReloadRow, Section: p.Section, Row: p.Row}
}

func ScrollTo(p types.Position, edge types.Edge, animated bool) Instruction {
	return Instruction{Op: OpScrollTo, Section: p.Section, Row: p.Row, Edge: edge, Animated: animated}
}

func AnimateRow(p types.Position) Instruction {
	return Instruction{Op: OpAnimateRow, Section: p.Section, Row: p.Row}
}

func CollapseDetail(p types.Position) Instruction {
	return Instruction{Op: OpCollapseDetail, Section: p.Section, Row: p.Row}
}

func ExpandDetail(p types.Position) Instruction {
	return Instruction{Op: OpExpandDetail, Section: p.Section, Row: p.Row}
}
