package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/danielpatrickdp/xp-complexity/go-generator/internal/config"
	"github.com/danielpatrickdp/xp-complexity/go-generator/internal/schedule"
)

// #region prompter

// prompter asks for run parameters on a terminal. An empty answer keeps the
// default shown in brackets.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

func (p *prompter) ask(label, def string) (string, error) {
	fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	line, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read answer: %w", err)
	}
	if line = strings.TrimSpace(line); line == "" {
		return def, nil
	}
	return line, nil
}

func (p *prompter) askInt(label string, def int) (int, error) {
	for {
		s, err := p.ask(label, strconv.Itoa(def))
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(s)
		if err == nil {
			return n, nil
		}
		fmt.Fprintf(p.out, "not a number: %q\n", s)
	}
}

// #endregion prompter

// #region run-params

// fillRunParams asks for every run parameter not set on the command line,
// in the order the batch script always asked them.
func fillRunParams(p *prompter, cfg *config.Config, given func(flag string) bool) error {
	var err error
	if !given("name") {
		if cfg.Dataset.Name, err = p.ask("Dataset file name", cfg.Dataset.Name); err != nil {
			return err
		}
	}
	if !given("min") {
		if cfg.Schedule.Min, err = p.askInt("Min complexity (0-10)", cfg.Schedule.Min); err != nil {
			return err
		}
	}
	if !given("max") {
		if cfg.Schedule.Max, err = p.askInt("Max complexity (0-10)", cfg.Schedule.Max); err != nil {
			return err
		}
	}
	if !given("quota") {
		if cfg.Run.Quota, err = p.askInt("Records to generate", cfg.Run.Quota); err != nil {
			return err
		}
	}
	if !given("mode") {
		def := "1"
		if m, _ := schedule.ParseMode(cfg.Schedule.Mode); m == schedule.ModeRamp {
			def = "0"
		}
		if cfg.Schedule.Mode, err = p.ask("Mode (1 = random, 0 = ramp)", def); err != nil {
			return err
		}
	}
	return nil
}

// #endregion run-params
