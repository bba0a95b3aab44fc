package thermal

import (
	"context"
	"errors"
	"time"
)

// #region sensor-interface

// Sensor reads the current temperature of one accelerator device in °C.
type Sensor interface {
	Temperature(ctx context.Context) (int, error)
}

// ErrNoSensor is returned by sensors that have nothing to read.
var ErrNoSensor = errors.New("no temperature sensor available")

// UnavailableCelsius is reported when the sensor cannot be read. It is below any
// sane high-water mark, so a broken sensor never blocks generation.
const UnavailableCelsius = 0

// #endregion sensor-interface

// #region config

// Config holds the hysteresis thresholds for the governor.
type Config struct {
	HighWater    int           // start cooling when a sample is above this
	LowWater     int           // resume once a sample is at or below this
	PollInterval time.Duration // re-sample period while cooling
}

// DefaultConfig returns the thresholds used for a consumer GPU.
func DefaultConfig() Config {
	return Config{
		HighWater:    78,
		LowWater:     60,
		PollInterval: 5 * time.Second,
	}
}

// #endregion config

// #region report

// ThrottleReport describes one Throttle call.
type ThrottleReport struct {
	Throttled bool          // the high-water mark was crossed
	Initial   int           // first sample
	Final     int           // sample that released the wait (== Initial when not throttled)
	Samples   int           // sensor reads performed, including the first
	Waited    time.Duration // total time spent sleeping
}

// #endregion report
