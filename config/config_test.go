package config

import (
	"errors"
	"math"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"zero height":     func(c *Config) { c.GridHeight = 0 },
		"no mines":        func(c *Config) { c.NumMines = 0 },
		"board full":      func(c *Config) { c.NumMines = c.Cells() },
		"negative lr":     func(c *Config) { c.LearningRate = -0.1 },
		"discount over 1": func(c *Config) { c.DiscountFactor = 1.5 },
		"epsilon over 1":  func(c *Config) { c.Epsilon = 2 },
		"epsilon NaN":     func(c *Config) { c.Epsilon = math.NaN() },
		"lr NaN":          func(c *Config) { c.LearningRate = math.NaN() },
	}
	for name, mutate := range cases {
		c := Default()
		mutate(c)
		err := c.Validate()
		if err == nil {
			t.Errorf("%s: expected an error", name)
			continue
		}
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: expected ErrInvalidConfig, got %v", name, err)
		}
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("MINES_GRID_HEIGHT", "4")
	t.Setenv("MINES_GRID_WIDTH", "6")
	t.Setenv("MINES_NUM_MINES", "3")
	t.Setenv("MINES_EPSILON", "0.25")
	t.Setenv("MINES_TERMINATE_ON_CLEAR", "false")
	t.Setenv("MINES_SEED", "42")

	c, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.GridHeight != 4 || c.GridWidth != 6 || c.NumMines != 3 {
		t.Errorf("board not read from env: %+v", c)
	}
	if c.Epsilon != 0.25 {
		t.Errorf("expected epsilon 0.25, got %v", c.Epsilon)
	}
	if c.TerminateOnClear {
		t.Errorf("expected terminate_on_clear false")
	}
	if c.Seed != 42 {
		t.Errorf("expected seed 42, got %d", c.Seed)
	}
	if c.LearningRate != Default().LearningRate {
		t.Errorf("unset values should keep defaults")
	}
}

func TestFromEnvBadValue(t *testing.T) {
	t.Setenv("MINES_NUM_MINES", "lots")
	if _, err := FromEnv(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestFromEnvNaNIsRejected(t *testing.T) {
	t.Setenv("MINES_LEARNING_RATE", "NaN")
	c, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if err := c.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected NaN learning rate to be rejected, got %v", err)
	}
}
