package board

import (
	"fmt"
	"strings"
)

const (
	renderHeader = "    A   B   C   D   E   F   G   H"
	renderRule   = "  +---+---+---+---+---+---+---+---+"
	renderLegend = "Legend: S=Start, G=Goal, X=Void, M=Math, P=Physics, C=Code, L=Logic, D=Medicine"
)

// Render draws the board as an ASCII grid with row 8 at the top.
func Render(b *Board) string {
	return render(b, Coordinate{}, false)
}

// RenderWithPosition draws the board with the cell at pos wrapped in
// asterisks. Voids are never marked.
func RenderWithPosition(b *Board, pos Coordinate) string {
	return render(b, pos, true)
}

func render(b *Board, pos Coordinate, mark bool) string {
	var sb strings.Builder
	sb.WriteString(renderHeader + "\n")
	sb.WriteString(renderRule + "\n")
	for row := Size; row >= 1; row-- {
		fmt.Fprintf(&sb, "%d |", row)
		for col := 0; col < Size; col++ {
			c := Coordinate{Col: col, Row: row}
			cat := b.Square(c).Category
			if mark && c == pos && cat.Kind() != KindVoid {
				fmt.Fprintf(&sb, "*%c*|", cat.Symbol())
			} else {
				fmt.Fprintf(&sb, " %c |", cat.Symbol())
			}
		}
		sb.WriteString("\n" + renderRule + "\n")
	}
	sb.WriteString("\n" + renderLegend)
	return sb.String()
}
