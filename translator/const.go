package translator

import "time"

// Calibration defaults.
const (
	DefaultDoubleClick   = 300 * time.Millisecond
	DefaultDeadzone      = 30
	DefaultBaseScale     = 15
	DefaultMaxScale      = 25
	DefaultNormalize     = 512.0
	DefaultExponent      = 0.7
	DefaultAccelWindow   = 100 * time.Millisecond
	DefaultAccelStep     = 0.2
	DefaultAccelCap      = 10
	DefaultDirectionStep = 8
)

// Line protocol keywords.
const (
	KeywordPress = "PRESS"
	KeywordLeft  = "LEFT"
	KeywordRight = "RIGHT"
	KeywordUp    = "UP"
	KeywordDown  = "DOWN"

	AnalogSeparator = ","
)
