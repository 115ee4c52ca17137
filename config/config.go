package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config holds the board dimensions and the agent hyperparameters.
// It is fixed for the whole run and passed to the environment and the
// agent explicitly.
type Config struct {
	GridHeight int `json:"grid_height"`
	GridWidth  int `json:"grid_width"`
	NumMines   int `json:"num_mines"`

	LearningRate   float64 `json:"learning_rate"`
	DiscountFactor float64 `json:"discount_factor"`
	Epsilon        float64 `json:"epsilon"`

	// Revealing the last safe cell ends the episode as a win
	TerminateOnClear bool `json:"terminate_on_clear"`

	// 0 seeds from the clock
	Seed uint64 `json:"seed"`
}

func Default() *Config {
	return &Config{
		GridHeight:       10,
		GridWidth:        10,
		NumMines:         10,
		LearningRate:     0.1,
		DiscountFactor:   0.9,
		Epsilon:          0.1,
		TerminateOnClear: true,
		Seed:             0,
	}
}

// FromEnv overlays MINES_* environment variables on top of the defaults
func FromEnv() (*Config, error) {
	c := Default()

	ints := map[string]*int{
		"MINES_GRID_HEIGHT": &c.GridHeight,
		"MINES_GRID_WIDTH":  &c.GridWidth,
		"MINES_NUM_MINES":   &c.NumMines,
	}
	for key, dst := range ints {
		v, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		i, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err)
		}
		*dst = i
	}

	floats := map[string]*float64{
		"MINES_LEARNING_RATE":   &c.LearningRate,
		"MINES_DISCOUNT_FACTOR": &c.DiscountFactor,
		"MINES_EPSILON":         &c.Epsilon,
	}
	for key, dst := range floats {
		v, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err)
		}
		*dst = f
	}

	if v, ok := os.LookupEnv("MINES_TERMINATE_ON_CLEAR"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("%w: MINES_TERMINATE_ON_CLEAR: %v", ErrInvalidConfig, err)
		}
		c.TerminateOnClear = b
	}
	if v, ok := os.LookupEnv("MINES_SEED"); ok {
		s, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: MINES_SEED: %v", ErrInvalidConfig, err)
		}
		c.Seed = s
	}
	return c, nil
}

// Cells is the number of cells on the board
func (c *Config) Cells() int {
	return c.GridHeight * c.GridWidth
}

func (c *Config) Validate() error {
	if c.GridHeight <= 0 || c.GridWidth <= 0 {
		return fmt.Errorf("%w: grid must be at least 1x1, got %dx%d", ErrInvalidConfig, c.GridHeight, c.GridWidth)
	}
	// at least one safe cell, otherwise mine placement never finishes
	if c.NumMines < 1 || c.NumMines >= c.Cells() {
		return fmt.Errorf("%w: num_mines must be in [1, %d), got %d", ErrInvalidConfig, c.Cells(), c.NumMines)
	}
	rates := []struct {
		name string
		val  float64
	}{
		{"learning_rate", c.LearningRate},
		{"discount_factor", c.DiscountFactor},
		{"epsilon", c.Epsilon},
	}
	for _, r := range rates {
		// written this way round so NaN is rejected too
		if !(r.val >= 0 && r.val <= 1) {
			return fmt.Errorf("%w: %s must be in [0, 1], got %v", ErrInvalidConfig, r.name, r.val)
		}
	}
	return nil
}
