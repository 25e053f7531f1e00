package knowledge

import (
	_ "embed"
	"fmt"
	"os"
)

//go:embed defaults.yaml
var defaultTables []byte

// Default returns the built-in knowledge tables.
func Default() (*Knowledge, error) {
	kb, err := Parse(defaultTables)
	if err != nil {
		// The embedded file ships with the binary; failing to parse it is a
		// build defect, not a runtime condition.
		return nil, fmt.Errorf("embedded knowledge tables: %w", err)
	}
	return kb, nil
}

// Load reads knowledge tables from path, or the embedded defaults when path
// is empty.
func Load(path string) (*Knowledge, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge tables: %w", err)
	}
	kb, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return kb, nil
}
