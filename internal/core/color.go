package core

// Color represents a foreground color for a screen cell.
type Color uint8

// Colors available to games. Tile kinds use the bright set so they stay
// distinct on dark terminals; frames and text use the rest.
const (
	ColorDefault Color = iota
	ColorGreen
	ColorWhite
	ColorGray
	ColorOrange
	ColorBrightRed
	ColorBrightGreen
	ColorBrightYellow
	ColorBrightBlue
	ColorBrightMagenta
	ColorBrightCyan
	ColorBrightWhite

	colorCount
)

// ansiCodes holds the ANSI 256-color code of each color.
var ansiCodes = [colorCount]string{
	ColorDefault:       "",
	ColorGreen:         "2",
	ColorWhite:         "7",
	ColorGray:          "245",
	ColorOrange:        "208",
	ColorBrightRed:     "9",
	ColorBrightGreen:   "10",
	ColorBrightYellow:  "11",
	ColorBrightBlue:    "12",
	ColorBrightMagenta: "13",
	ColorBrightCyan:    "14",
	ColorBrightWhite:   "15",
}

// ANSI returns the ANSI 256-color code for c, or "" for the terminal
// default and unknown values.
func (c Color) ANSI() string {
	if c >= colorCount {
		return ""
	}
	return ansiCodes[c]
}
