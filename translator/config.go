package translator

import (
	"errors"
	"time"
)

// Config holds the tuning values of the translator. The zero value is not
// usable; start from DefaultConfig.
type Config struct {
	DoubleClick   time.Duration `help:"Press markers closer than this are reported as a left click" default:"300ms" env:"JOYMOUSE_DOUBLE_CLICK"`
	Deadzone      int           `help:"Analog magnitudes below this are treated as zero" default:"30" env:"JOYMOUSE_DEADZONE"`
	BaseScale     int           `help:"Cursor units for a full-scale analog sample" default:"15" env:"JOYMOUSE_BASE_SCALE"`
	MaxScale      int           `help:"Per-axis clamp for a single move" default:"25" env:"JOYMOUSE_MAX_SCALE"`
	Normalize     float64       `help:"Analog full-scale magnitude" default:"512" env:"JOYMOUSE_NORMALIZE"`
	Exponent      float64       `help:"Response curve exponent" default:"0.7" env:"JOYMOUSE_EXPONENT"`
	AccelWindow   time.Duration `help:"Samples closer than this count as sustained motion" default:"100ms" env:"JOYMOUSE_ACCEL_WINDOW"`
	AccelStep     float64       `help:"Acceleration added per sustained sample" default:"0.2" env:"JOYMOUSE_ACCEL_STEP"`
	AccelCap      int           `help:"Maximum sustained sample count" default:"10" env:"JOYMOUSE_ACCEL_CAP"`
	DirectionStep int           `help:"Cursor units per directional keyword" default:"8" env:"JOYMOUSE_DIRECTION_STEP"`
}

// DefaultConfig returns the calibration the firmware was tuned against.
func DefaultConfig() Config {
	return Config{
		DoubleClick:   DefaultDoubleClick,
		Deadzone:      DefaultDeadzone,
		BaseScale:     DefaultBaseScale,
		MaxScale:      DefaultMaxScale,
		Normalize:     DefaultNormalize,
		Exponent:      DefaultExponent,
		AccelWindow:   DefaultAccelWindow,
		AccelStep:     DefaultAccelStep,
		AccelCap:      DefaultAccelCap,
		DirectionStep: DefaultDirectionStep,
	}
}

// Validate reports the first value that would break the translator's
// invariants.
func (c Config) Validate() error {
	switch {
	case c.DoubleClick <= 0:
		return errors.New("double click window must be positive")
	case c.AccelWindow <= 0:
		return errors.New("acceleration window must be positive")
	case c.Deadzone < 0:
		return errors.New("deadzone must not be negative")
	case c.BaseScale <= 0:
		return errors.New("base scale must be positive")
	case c.MaxScale <= 0:
		return errors.New("max scale must be positive")
	case c.Normalize <= 0:
		return errors.New("normalize must be positive")
	case c.Exponent <= 0:
		return errors.New("exponent must be positive")
	case c.AccelCap < 0:
		return errors.New("acceleration cap must not be negative")
	case c.AccelStep < 0:
		return errors.New("acceleration step must not be negative")
	case c.DirectionStep <= 0:
		return errors.New("direction step must be positive")
	}
	return nil
}
