package fsutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/tidwall/jsonc"
)

// ReadJSONSafe reads and decodes path. It returns nil when the file is
// missing, unreadable or not valid JSON, never an error. Numbers decode as
// json.Number so a rewrite does not lose precision.
func ReadJSONSafe(fs afero.Fs, path string) interface{} {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil
	}

	var v interface{}
	if err := decode(data, &v); err != nil {
		return nil
	}
	return v
}

// ReadJSONObject is ReadJSONSafe restricted to JSON objects.
func ReadJSONObject(fs afero.Fs, path string) map[string]interface{} {
	obj, _ := ReadJSONSafe(fs, path).(map[string]interface{})
	return obj
}

// DecodeJSON reads path into v.
func DecodeJSON(fs afero.Fs, path string, v interface{}) error {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return err
	}
	if err := decode(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// IsJSONC reports whether path fails to parse as JSON only because of
// comments or trailing commas. It is used to explain a rejection, never to
// accept a document.
func IsJSONC(fs afero.Fs, path string) bool {
	data, err := afero.ReadFile(fs, path)
	if err != nil || json.Valid(data) {
		return false
	}
	return json.Valid(jsonc.ToJSON(data))
}

func decode(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after top-level value")
	}
	return nil
}

// WriteJSON writes v as two-space indented JSON. The file is written to a
// temporary sibling first and renamed into place.
func WriteJSON(fs afero.Fs, path string, v interface{}) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	data = append(data, '\n')

	tmpPath := path + ".tmp"
	if err := afero.WriteFile(fs, tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary file for %s: %w", path, err)
	}

	if IsSymlink(fs, path) {
		_ = fs.Remove(path)
	}

	if err := fs.Rename(tmpPath, path); err != nil {
		_ = fs.Remove(tmpPath)
		return fmt.Errorf("failed to rename %s: %w", tmpPath, err)
	}
	return nil
}

// RemoveIfExists deletes path, ignoring a missing file.
func RemoveIfExists(fs afero.Fs, path string) error {
	if err := fs.RemoveAll(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
