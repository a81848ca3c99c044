// Package deck loads slide decks from TOML and watches deck files for edits.
package deck

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/desertthunder/deck/internal/models"
	"github.com/desertthunder/deck/internal/shared"
)

//go:embed default.toml
var defaultDeck []byte

// Default returns the built-in twelve slide deck.
func Default() *models.Deck {
	d, err := Parse(defaultDeck)
	if err != nil {
		panic(fmt.Sprintf("failed to parse embedded deck: %v", err))
	}
	return d
}

// Parse decodes, numbers and validates a deck.
func Parse(data []byte) (*models.Deck, error) {
	var d models.Deck
	if err := toml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidDeck, err)
	}

	d.Number()
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidDeck, err)
	}

	return &d, nil
}

// Load reads the deck at path. An empty path returns [Default].
func Load(path string) (*models.Deck, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", shared.ErrDeckNotFound, path)
		}
		return nil, fmt.Errorf("failed to read deck: %w", err)
	}

	return Parse(data)
}

// WriteDefault writes the built-in deck source to path so it can be edited.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("deck file already exists at %s", path)
	}
	if err := os.WriteFile(path, defaultDeck, 0644); err != nil {
		return fmt.Errorf("failed to write deck file: %w", err)
	}
	return nil
}
