package translator

import (
	"fmt"
	"strconv"
	"strings"
)

// TokenKind identifies the shape of a telemetry line.
type TokenKind uint8

const (
	TokenIgnored TokenKind = iota
	TokenPress
	TokenAnalog
	TokenDirection
)

func (k TokenKind) String() string {
	switch k {
	case TokenIgnored:
		return "ignored"
	case TokenPress:
		return "press"
	case TokenAnalog:
		return "analog"
	case TokenDirection:
		return "direction"
	default:
		return fmt.Sprintf("TokenKind(%d)", uint8(k))
	}
}

// Token is a classified telemetry line.
//
// For TokenAnalog, X and Y hold the raw stick values. For TokenDirection they
// hold the keyword sum per axis in unit steps (-1, 0 or +1 when the keywords
// are mutually exclusive).
type Token struct {
	Kind TokenKind
	X, Y int
}

// Classify turns a decoded line into a Token. The first matching shape wins:
// blank, press marker, analog pair, directional keywords. The comma alone
// decides between analog and directional handling, so a line such as
// "LEFT,RIGHT" is a malformed analog pair and is ignored.
func Classify(line string) Token {
	line = strings.TrimSpace(line)
	if line == "" {
		return Token{Kind: TokenIgnored}
	}
	if strings.Contains(line, KeywordPress) {
		return Token{Kind: TokenPress}
	}
	if strings.Contains(line, AnalogSeparator) {
		x, y, ok := parseAnalog(line)
		if !ok {
			return Token{Kind: TokenIgnored}
		}
		return Token{Kind: TokenAnalog, X: x, Y: y}
	}

	var dx, dy int
	matched := false
	if strings.Contains(line, KeywordLeft) {
		dx--
		matched = true
	}
	if strings.Contains(line, KeywordRight) {
		dx++
		matched = true
	}
	if strings.Contains(line, KeywordUp) {
		dy--
		matched = true
	}
	if strings.Contains(line, KeywordDown) {
		dy++
		matched = true
	}
	if !matched {
		return Token{Kind: TokenIgnored}
	}
	return Token{Kind: TokenDirection, X: dx, Y: dy}
}

func parseAnalog(line string) (x, y int, ok bool) {
	parts := strings.Split(line, AnalogSeparator)
	if len(parts) != 2 {
		return 0, 0, false
	}
	x, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	y, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return x, y, true
}
