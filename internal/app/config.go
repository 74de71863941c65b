package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Config controls runtime behavior for the TUI app.
type Config struct {
	DataDir     string `env:"CARDAROO_DATA_DIR"`
	LogPath     string `env:"CARDAROO_LOG_PATH"`
	ASCIIOnly   bool   `env:"CARDAROO_ASCII_ONLY"`
	DebugLayout bool   `env:"CARDAROO_DEBUG_LAYOUT"`
	Gemini      GeminiConfig
	UI          UIConfig
	Study       StudyConfig
}

type GeminiConfig struct {
	APIKey string `env:"GEMINI_API_KEY"`
	Model  string `env:"CARDAROO_GEMINI_MODEL"`
}

type UIConfig struct {
	StyleVariant string `env:"CARDAROO_UI_STYLE"`
	MotionLevel  string `env:"CARDAROO_UI_MOTION"`
}

type StudyConfig struct {
	AnswerFeedbackMS int `env:"CARDAROO_ANSWER_FEEDBACK_MS"`
}

func DefaultConfig() Config {
	return Config{
		UI: UIConfig{
			StyleVariant: "modern_arcade",
			MotionLevel:  "full",
		},
		Study: StudyConfig{
			AnswerFeedbackMS: 1000,
		},
	}
}

func (c *Config) Validate() error {
	switch c.UI.StyleVariant {
	case "", "modern_arcade", "cozy_clean", "retro_terminal":
	default:
		return fmt.Errorf("invalid ui style variant %q", c.UI.StyleVariant)
	}
	if c.UI.StyleVariant == "" {
		c.UI.StyleVariant = "modern_arcade"
	}
	switch c.UI.MotionLevel {
	case "", "off", "reduced", "full":
	default:
		return fmt.Errorf("invalid ui motion level %q", c.UI.MotionLevel)
	}
	if c.UI.MotionLevel == "" {
		c.UI.MotionLevel = "full"
	}
	if c.Study.AnswerFeedbackMS <= 0 {
		c.Study.AnswerFeedbackMS = 1000
	}

	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return errors.New("cannot resolve user home directory")
		}
		c.DataDir = filepath.Join(home, ".local", "share", "cardaroo")
	}

	return nil
}
