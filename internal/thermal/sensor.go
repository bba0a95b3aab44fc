package thermal

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// #region nvidia-smi

// NvidiaSMISensor queries one GPU through the nvidia-smi CLI.
type NvidiaSMISensor struct {
	Binary string // defaults to "nvidia-smi"
	Index  int
}

// Temperature returns the GPU core temperature in °C.
func (s NvidiaSMISensor) Temperature(ctx context.Context) (int, error) {
	bin := s.Binary
	if bin == "" {
		bin = "nvidia-smi"
	}
	out, err := exec.CommandContext(ctx, bin,
		"--query-gpu=temperature.gpu",
		"--format=csv,noheader,nounits",
		"-i", strconv.Itoa(s.Index),
	).Output()
	if err != nil {
		return 0, fmt.Errorf("nvidia-smi gpu %d: %w", s.Index, err)
	}
	return parseCelsius(out)
}

// parseCelsius reads the first non-empty line of nvidia-smi output.
func parseCelsius(out []byte) (int, error) {
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		c, err := strconv.Atoi(line)
		if err != nil {
			return 0, fmt.Errorf("parse temperature %q: %w", line, err)
		}
		return c, nil
	}
	return 0, fmt.Errorf("parse temperature: empty output")
}

// #endregion nvidia-smi

// #region hwmon

// HwmonSensor reads a Linux hwmon temp*_input file (millidegrees Celsius).
type HwmonSensor struct {
	Path string
}

// Temperature returns the reading rounded down to whole degrees.
func (s HwmonSensor) Temperature(_ context.Context) (int, error) {
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return 0, fmt.Errorf("read hwmon %s: %w", s.Path, err)
	}
	milli, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return 0, fmt.Errorf("parse hwmon %s: %w", s.Path, err)
	}
	return milli / 1000, nil
}

// #endregion hwmon

// #region nop

// NopSensor is used when no sensor is configured.
type NopSensor struct{}

// Temperature always fails with ErrNoSensor.
func (NopSensor) Temperature(context.Context) (int, error) {
	return 0, ErrNoSensor
}

// #endregion nop

// #region factory

// NewSensor builds a sensor by kind: "nvidia-smi", "hwmon" or "none".
func NewSensor(kind string, index int, path string) (Sensor, error) {
	switch kind {
	case "nvidia-smi", "nvidia", "":
		return NvidiaSMISensor{Index: index}, nil
	case "hwmon":
		if path == "" {
			return nil, fmt.Errorf("hwmon sensor requires a path")
		}
		return HwmonSensor{Path: path}, nil
	case "none":
		return NopSensor{}, nil
	default:
		return nil, fmt.Errorf("unknown sensor kind %q", kind)
	}
}

// #endregion factory
