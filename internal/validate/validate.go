// Package validate checks the shape of JSON documents before they are trusted
// as import sources. Validation never fails with an error; callers decide what
// an invalid Result means.
package validate

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/smy-101/vibe-sync/internal/fsutil"
)

// Result is the outcome of one validation call.
type Result struct {
	Valid  bool
	Errors []string
	Data   map[string]interface{}
}

func ok(data map[string]interface{}) Result {
	return Result{Valid: true, Errors: []string{}, Data: data}
}

func fail(format string, args ...interface{}) Result {
	return Result{Valid: false, Errors: []string{fmt.Sprintf(format, args...)}}
}

// ValidateJSONFile requires path to hold a JSON object.
func ValidateJSONFile(fs afero.Fs, path string) Result {
	data := fsutil.ReadJSONSafe(fs, path)
	if data == nil {
		if fsutil.IsJSONC(fs, path) {
			return fail("Cannot parse JSON (comments and trailing commas are not allowed): %s", path)
		}
		return fail("Cannot parse JSON: %s", path)
	}

	obj, isObject := data.(map[string]interface{})
	if !isObject {
		return fail("Expected object, got %s: %s", kindOf(data), path)
	}
	return ok(obj)
}

// ValidateSettings additionally requires enabledPlugins, when present, to be
// an object.
func ValidateSettings(fs afero.Fs, path string) Result {
	return validateMember(fs, path, "enabledPlugins")
}

// ValidatePlugins additionally requires plugins, when present, to be an object.
func ValidatePlugins(fs afero.Fs, path string) Result {
	return validateMember(fs, path, "plugins")
}

// ValidateMarketplaces only applies the generic object check.
func ValidateMarketplaces(fs afero.Fs, path string) Result {
	return ValidateJSONFile(fs, path)
}

func validateMember(fs afero.Fs, path, key string) Result {
	base := ValidateJSONFile(fs, path)
	if !base.Valid {
		return base
	}

	if value, present := base.Data[key]; present {
		if _, isObject := value.(map[string]interface{}); !isObject {
			return fail("%s: %s must be an object, got %s", filepath.Base(path), key, kindOf(value))
		}
	}
	return base
}

func kindOf(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	case string:
		return "string"
	case bool:
		return "boolean"
	default:
		return "number"
	}
}
