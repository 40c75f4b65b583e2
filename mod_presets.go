package lightlab

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// PanelPreset is the on-disk form of a panel: field path to value.
type PanelPreset struct {
	Title  string         `json:"title"`
	Values map[string]any `json:"values"`
}

// CapturePanelPreset snapshots every field value.
func CapturePanelPreset(panel *Panel) PanelPreset {
	preset := PanelPreset{Title: panel.Title, Values: make(map[string]any)}
	panel.Walk(func(path string, field Field) bool {
		preset.Values[path] = field.Value()
		return true
	})
	return preset
}

func SavePanelPreset(panel *Panel, filename string) error {
	bytes, err := json.MarshalIndent(CapturePanelPreset(panel), "", "  ")
	if err != nil {
		return fmt.Errorf("encode preset: %w", err)
	}
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create preset dir: %w", err)
		}
	}
	return os.WriteFile(filename, bytes, 0644)
}

// LoadPanelPreset applies a saved preset through the panel so every bound
// callback fires. Fields the panel does not have are skipped and returned.
func LoadPanelPreset(panel *Panel, filename string) (skipped []string, err error) {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var preset PanelPreset
	if err := json.Unmarshal(bytes, &preset); err != nil {
		return nil, fmt.Errorf("decode preset %s: %w", filename, err)
	}
	return ApplyPanelPreset(panel, preset), nil
}

// ApplyPanelPreset sets values in panel declaration order, so folder toggles
// such as "Enable Animation" are applied before the values they gate.
func ApplyPanelPreset(panel *Panel, preset PanelPreset) (skipped []string) {
	seen := make(map[string]bool, len(preset.Values))
	panel.Walk(func(path string, field Field) bool {
		v, ok := preset.Values[path]
		if !ok {
			return true
		}
		seen[path] = true
		if !field.SetValue(v) {
			skipped = append(skipped, path)
		}
		return true
	})
	for path := range preset.Values {
		if !seen[path] {
			skipped = append(skipped, path)
		}
	}
	sort.Strings(skipped)
	return skipped
}
