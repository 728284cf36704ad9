// SPDX-FileCopyrightText: 2025 The Jamstore Authors
// SPDX-License-Identifier: EUPL-1.2

package tui

// Layout constants for the storefront screen.
const (
	titleHeight  = 1
	menuHeight   = 3
	menuGap      = 1
	arrowWidth   = 3
	arrowHeight  = 3
	gridMargin   = 1
	statusHeight = 1
	buttonWidth  = 8
	buttonHeight = 3
	buttonGap    = 4
	minCellH     = 3
	minWidth     = 40

	// gridTop is the first grid row: title, menu and one blank row.
	gridTop = titleHeight + menuHeight + 1
	// chrome is every row that is not grid.
	chrome = gridTop + footerHeight + statusHeight
)

// Rect is a screen rectangle in cells.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether the cell at x, y lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return r.W > 0 && r.H > 0 && x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// TargetKind names what a pointer press landed on.
type TargetKind int

// Hit targets.
const (
	TargetNone TargetKind = iota
	TargetSlot
	TargetNext
	TargetPrevious
	TargetCategory
	TargetYes
	TargetNo
)

// Target is the result of a hit test. Index is the slot or category
// position for TargetSlot and TargetCategory.
type Target struct {
	Kind  TargetKind
	Index int
}

// Layout positions every interactive element for one terminal size.
type Layout struct {
	Width, Height int
	Columns, Rows int
	TooSmall      bool

	Menu     []Rect
	MenuW    int
	Grid     Rect
	Cells    []Rect
	Previous Rect
	Next     Rect
	Dialog   Rect
	No       Rect
	Yes      Rect
}

// NewLayout computes the layout for a terminal of width by height showing
// a grid of columns by rows and one menu button per category.
func NewLayout(width, height, columns, rows, categories int) Layout {
	l := Layout{Width: width, Height: height, Columns: columns, Rows: rows}

	if width < minWidth || height < chrome+rows*minCellH || columns < 1 || rows < 1 {
		l.TooSmall = true
		return l
	}

	l.layoutMenu(categories)

	gridH := height - chrome
	l.Grid = Rect{X: arrowWidth + gridMargin, Y: gridTop, W: width - 2*(arrowWidth+gridMargin), H: gridH}

	cellW := l.Grid.W / columns
	cellH := gridH / rows

	l.Cells = make([]Rect, columns*rows)
	for i := range l.Cells {
		l.Cells[i] = Rect{
			X: l.Grid.X + (i%columns)*cellW,
			Y: l.Grid.Y + (i/columns)*cellH,
			W: cellW,
			H: cellH,
		}
	}

	arrowY := l.Grid.Y + (gridH-arrowHeight)/2
	l.Previous = Rect{X: 0, Y: arrowY, W: arrowWidth, H: arrowHeight}
	l.Next = Rect{X: width - arrowWidth, Y: arrowY, W: arrowWidth, H: arrowHeight}

	l.Dialog = Rect{X: l.Grid.X, Y: titleHeight, W: l.Grid.W, H: height - titleHeight - footerHeight - statusHeight}

	buttonY := l.Dialog.Y + l.Dialog.H - 1 - 1 - buttonHeight
	center := l.Dialog.X + l.Dialog.W/2
	l.No = Rect{X: center - buttonGap/2 - buttonWidth, Y: buttonY, W: buttonWidth, H: buttonHeight}
	l.Yes = Rect{X: center + buttonGap/2, Y: buttonY, W: buttonWidth, H: buttonHeight}

	return l
}

// layoutMenu spreads the category buttons evenly across the width. Buttons
// that would fall off the right edge get no rectangle.
func (l *Layout) layoutMenu(n int) {
	if n < 1 {
		return
	}

	l.MenuW = max((l.Width-menuGap*(n+1))/n, 3)
	l.Menu = make([]Rect, n)

	for i := range l.Menu {
		x := menuGap + i*(l.MenuW+menuGap)
		if x+l.MenuW > l.Width {
			continue
		}

		l.Menu[i] = Rect{X: x, Y: titleHeight, W: l.MenuW, H: menuHeight}
	}
}

// HitTest resolves a press at x, y. While the dialog is open only its
// buttons respond. Otherwise the grid wins over the arrows, and the
// arrows over the category menu.
func (l Layout) HitTest(x, y int, dialog bool) Target {
	if l.TooSmall {
		return Target{Kind: TargetNone}
	}

	if dialog {
		switch {
		case l.Yes.Contains(x, y):
			return Target{Kind: TargetYes}
		case l.No.Contains(x, y):
			return Target{Kind: TargetNo}
		default:
			return Target{Kind: TargetNone}
		}
	}

	for i, cell := range l.Cells {
		if cell.Contains(x, y) {
			return Target{Kind: TargetSlot, Index: i}
		}
	}

	if l.Next.Contains(x, y) {
		return Target{Kind: TargetNext}
	}

	if l.Previous.Contains(x, y) {
		return Target{Kind: TargetPrevious}
	}

	for i, button := range l.Menu {
		if button.Contains(x, y) {
			return Target{Kind: TargetCategory, Index: i}
		}
	}

	return Target{Kind: TargetNone}
}
