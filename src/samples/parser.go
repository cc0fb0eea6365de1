// Package samples holds the (x, y) pairs read from the serial device: the tolerant
// line parser and the guarded buffer shared between the reader and the render loop.
package samples

import (
	"regexp"
	"strconv"
)

// numberRe matches signed decimals with a fractional part, or signed integers.
// Decimals come first so "3.5" is one token instead of "3" and ".5".
var numberRe = regexp.MustCompile(`[-+]?\d*\.\d+|[-+]?\d+`)

// Sample is one ingested pair.
type Sample struct {
	X float64
	Y float64
}

// ParseLine extracts the first two numbers found anywhere in line.
// Accepted shapes include "10 20", "10, 20", "(10, 20)" and "x:10 y:20"; tokens after the
// second are ignored. Lines with fewer than two numbers report ok=false.
func ParseLine(line string) (Sample, bool) {
	tokens := numberRe.FindAllString(line, 2)
	if len(tokens) < 2 {
		return Sample{}, false
	}
	x, err := strconv.ParseFloat(tokens[0], 64)
	if err != nil {
		return Sample{}, false
	}
	y, err := strconv.ParseFloat(tokens[1], 64)
	if err != nil {
		return Sample{}, false
	}
	return Sample{X: x, Y: y}, true
}
