package thermal

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// #region governor

// Governor gates the generation loop on hardware temperature. Two thresholds
// are used so the loop does not toggle around a single cutoff.
type Governor struct {
	sensor Sensor
	config Config
	logger *zap.Logger
	sleep  func(ctx context.Context, d time.Duration) error
	last   int
}

// NewGovernor creates a governor over sensor. logger may be nil.
func NewGovernor(sensor Sensor, config Config, logger *zap.Logger) (*Governor, error) {
	if sensor == nil {
		sensor = NopSensor{}
	}
	if config.LowWater > config.HighWater {
		return nil, fmt.Errorf("low-water mark %d above high-water mark %d", config.LowWater, config.HighWater)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Governor{
		sensor: sensor,
		config: config,
		logger: logger,
		sleep:  sleepContext,
	}, nil
}

// #endregion governor

// #region sample

// Sample reads the sensor once. Read failures are logged and reported as
// UnavailableCelsius.
func (g *Governor) Sample(ctx context.Context) int {
	c, err := g.sensor.Temperature(ctx)
	if err != nil {
		g.logger.Warn("temperature read failed", zap.Error(err))
		c = UnavailableCelsius
	}
	g.last = c
	return c
}

// Last returns the most recent sample.
func (g *Governor) Last() int {
	return g.last
}

// #endregion sample

// #region throttle

// Throttle samples the sensor and, if the reading is above the high-water mark,
// blocks until a reading at or below the low-water mark. There is no upper bound
// on the wait; only ctx cancellation ends it early.
func (g *Governor) Throttle(ctx context.Context) (ThrottleReport, error) {
	first := g.Sample(ctx)
	report := ThrottleReport{Initial: first, Final: first, Samples: 1}
	if first <= g.config.HighWater {
		return report, nil
	}

	report.Throttled = true
	g.logger.Warn("GPU overheated, waiting to cool down",
		zap.Int("celsius", first),
		zap.Int("high_water", g.config.HighWater),
		zap.Int("low_water", g.config.LowWater))

	for {
		c := g.Sample(ctx)
		report.Samples++
		report.Final = c
		if c <= g.config.LowWater {
			break
		}
		if err := g.sleep(ctx, g.config.PollInterval); err != nil {
			return report, fmt.Errorf("thermal wait: %w", err)
		}
		report.Waited += g.config.PollInterval
	}

	g.logger.Info("temperature back to normal, resuming",
		zap.Int("celsius", report.Final),
		zap.Duration("waited", report.Waited))
	return report, nil
}

// #endregion throttle

// #region helpers

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// #endregion helpers
