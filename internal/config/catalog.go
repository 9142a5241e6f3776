package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// CatalogGame is one preset a player can pick when setting up a session.
type CatalogGame struct {
	Name     string   `yaml:"name" json:"name"`
	GameType string   `yaml:"game_type" json:"game_type"`
	Stakes   []string `yaml:"stakes,omitempty" json:"stakes,omitempty"`
}

// Catalog is the read-only seed of known games. It is loaded once at boot;
// there is no runtime CRUD on it.
type Catalog struct {
	Games []CatalogGame `yaml:"games" json:"games"`
}

func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %q: %w", path, err)
	}
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse catalog %q: %w", path, err)
	}
	games := make([]CatalogGame, 0, len(c.Games))
	for _, g := range c.Games {
		g.Name = strings.TrimSpace(g.Name)
		g.GameType = strings.ToLower(strings.TrimSpace(g.GameType))
		if g.Name == "" {
			continue
		}
		if g.GameType != "cash" && g.GameType != "tournament" {
			continue
		}
		games = append(games, g)
	}
	c.Games = games
	return &c, nil
}

// HasGame reports whether a name is listed for the given game type.
func (c *Catalog) HasGame(gameType, name string) bool {
	if c == nil {
		return false
	}
	name = strings.TrimSpace(name)
	for _, g := range c.Games {
		if g.GameType == gameType && g.Name == name {
			return true
		}
	}
	return false
}
