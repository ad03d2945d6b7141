package file

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/maxviazov/football-manager-sim/internal/model"
)

// SaveWorld writes w as YAML.
func SaveWorld(path string, w *model.World) error {
	b, err := yaml.Marshal(w)
	if err != nil {
		return fmt.Errorf("encode world: %w", err)
	}
	return writeAtomic(path, b)
}

// LoadWorld reads a world written by SaveWorld.
func LoadWorld(path string) (*model.World, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read world: %w", err)
	}
	w := model.NewWorld("", "", 0)
	if err := yaml.Unmarshal(b, w); err != nil {
		return nil, fmt.Errorf("decode world: %w", err)
	}
	return w, nil
}
