// Package config loads flyby program settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/soypat/flyby"
	"github.com/soypat/glgl/math/ms3"
)

// Prefix is prepended to every environment variable name.
const Prefix = "FLYBY_"

// Config holds the settings shared by the flyby programs. Every field is read
// from a FLYBY_ prefixed environment variable.
type Config struct {
	Model       string    `env:"MODEL" envDefault:"honey dukes.glb"`
	ModelOffset []float32 `env:"MODEL_OFFSET" envDefault:"0,-2,-1"`
	Width       int       `env:"WIDTH" envDefault:"1280"`
	Height      int       `env:"HEIGHT" envDefault:"720"`
	Title       string    `env:"TITLE" envDefault:"flyby"`
	FOV         float32   `env:"FOV" envDefault:"75"` // vertical field of view in degrees.
	Near        float32   `env:"NEAR" envDefault:"0.1"`
	Far         float32   `env:"FAR" envDefault:"1000"`
	Samples     int       `env:"SAMPLES" envDefault:"4"` // multisample antialiasing samples, 0 disables.
	Easing      string    `env:"EASING" envDefault:"power2.inOut"`
	FPS         int       `env:"FPS" envDefault:"60"` // headless preview tick rate.
	Headless    bool      `env:"HEADLESS"`
	Debug       bool      `env:"DEBUG"`
	Development bool      `env:"DEVELOPMENT"`
	LogFile     string    `env:"LOG_FILE"`
}

// Load reads the optional dotenv file into the process environment, then
// parses and validates Config. A missing dotenv file is not an error.
func Load(dotenv string) (Config, error) {
	if dotenv != "" {
		err := godotenv.Load(dotenv)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", dotenv, err)
		}
	}
	var cfg Config
	err := env.ParseWithOptions(&cfg, env.Options{Prefix: Prefix})
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	err = cfg.Validate()
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field ranges.
func (cfg Config) Validate() (err error) {
	switch {
	case cfg.Width <= 0 || cfg.Height <= 0:
		err = fmt.Errorf("bad window size %dx%d", cfg.Width, cfg.Height)
	case cfg.FOV <= 0 || cfg.FOV >= 180:
		err = fmt.Errorf("field of view %g out of range (0,180)", cfg.FOV)
	case cfg.Near <= 0 || cfg.Far <= cfg.Near:
		err = fmt.Errorf("bad clip planes near=%g far=%g", cfg.Near, cfg.Far)
	case len(cfg.ModelOffset) != 3:
		err = fmt.Errorf("model offset needs 3 components, got %d", len(cfg.ModelOffset))
	case cfg.Samples < 0:
		err = errors.New("negative sample count")
	case cfg.FPS <= 0:
		err = errors.New("fps must be positive")
	}
	if err != nil {
		return err
	}
	_, err = flyby.EasingByName(cfg.Easing)
	return err
}

// Offset returns ModelOffset as a vector.
func (cfg Config) Offset() ms3.Vec {
	if len(cfg.ModelOffset) != 3 {
		return ms3.Vec{}
	}
	return ms3.Vec{X: cfg.ModelOffset[0], Y: cfg.ModelOffset[1], Z: cfg.ModelOffset[2]}
}

// Ease returns the configured easing curve, falling back to [flyby.Power2InOut].
func (cfg Config) Ease() flyby.Easing {
	e, err := flyby.EasingByName(cfg.Easing)
	if err != nil {
		return flyby.Power2InOut
	}
	return e
}
