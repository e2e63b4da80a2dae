package main

import (
	"fmt"
	"image"
	stdcolor "image/color"
	"strings"

	styles "github.com/charmbracelet/lipgloss"
)

// Every terminal cell shows a block of cellWidth×cellHeight pixels as two half-block pixels.
const (
	cellWidth  = 4
	cellHeight = 8
	upperHalf  = "▀"
)

type cell struct {
	top, bottom stdcolor.RGBA
}

// average returns the mean color of r in img. Pixels outside of img are ignored.
func average(img *image.RGBA, r image.Rectangle) stdcolor.RGBA {
	r = r.Intersect(img.Bounds())
	n := r.Dx() * r.Dy()
	if n == 0 {
		return stdcolor.RGBA{}
	}
	var sr, sg, sb, sa int
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := img.RGBAAt(x, y)
			sr += int(c.R)
			sg += int(c.G)
			sb += int(c.B)
			sa += int(c.A)
		}
	}
	return stdcolor.RGBA{R: uint8(sr / n), G: uint8(sg / n), B: uint8(sb / n), A: uint8(sa / n)}
}

// toCells downsamples img to cols×rows cells.
func toCells(img *image.RGBA, cols, rows int) [][]cell {
	out := make([][]cell, rows)
	for y := range out {
		out[y] = make([]cell, cols)
		for x := range out[y] {
			px, py := x*cellWidth, y*cellHeight
			out[y][x] = cell{
				top:    average(img, image.Rect(px, py, px+cellWidth, py+cellHeight/2)),
				bottom: average(img, image.Rect(px, py+cellHeight/2, px+cellWidth, py+cellHeight)),
			}
		}
	}
	return out
}

func hex(c stdcolor.RGBA) styles.Color {
	return styles.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}

// renderCells draws cells as rows of colored half blocks. Runs of identical cells share one style.
func renderCells(cells [][]cell) string {
	var sb strings.Builder
	for y, row := range cells {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := 0; x < len(row); {
			end := x + 1
			for end < len(row) && row[end] == row[x] {
				end++
			}
			style := styles.NewStyle().Foreground(hex(row[x].top)).Background(hex(row[x].bottom))
			sb.WriteString(style.Render(strings.Repeat(upperHalf, end-x)))
			x = end
		}
	}
	return sb.String()
}

// pixel returns the pixel at the center of the cell at col, row.
func pixel(col, row int) (float32, float32) {
	return float32(col*cellWidth + cellWidth/2), float32(row*cellHeight + cellHeight/2)
}
