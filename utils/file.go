package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ReadFileInDir reads name from dir, refusing names that escape the directory.
func ReadFileInDir(dir, name string) ([]byte, error) {
	clean := filepath.Clean(name)
	if filepath.IsAbs(clean) || clean == ".." || filepath.Base(clean) != clean {
		return nil, fmt.Errorf("invalid file name %q", name)
	}
	return os.ReadFile(filepath.Join(dir, clean))
}

// DecodeJSON unmarshals raw into v with a labelled error.
func DecodeJSON(label string, raw []byte, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", label, err)
	}
	return nil
}
