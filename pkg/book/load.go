package book

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

var zipMagic = []byte("PK\x03\x04")

// Load reads a book from a YAML/JSON document or a zip archive.
// Relative sound files are resolved against the directory of the document.
func Load(path string) (*Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read book: %w", err)
	}
	absDir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	return FromBytes(data, absDir)
}

// FromBytes loads a book from raw bytes, detecting zip archives by their header.
// baseDir is used to resolve relative sound files of plain documents.
func FromBytes(data []byte, baseDir string) (*Book, error) {
	if bytes.HasPrefix(data, zipMagic) {
		return Extract(bytes.NewReader(data), int64(len(data)))
	}
	return Parse(data, baseDir)
}

// Parse decodes a YAML (or JSON) document into a book.
func Parse(data []byte, baseDir string) (*Book, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse book: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("failed to parse book: empty document")
	}

	def, err := decodeDefinition(raw)
	if err != nil {
		return nil, err
	}
	return Compile(def, baseDir)
}

func decodeDefinition(raw map[string]any) (Definition, error) {
	var def Definition
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			secondsToDurationHook,
			mapstructure.StringToTimeDurationHookFunc(),
		),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &def,
	})
	if err != nil {
		return def, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return def, fmt.Errorf("failed to decode book: %w", err)
	}
	return def, nil
}

// secondsToDurationHook accepts plain numbers as seconds for duration fields.
func secondsToDurationHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(time.Duration(0)) {
		return data, nil
	}
	switch v := data.(type) {
	case int:
		return time.Duration(v) * time.Second, nil
	case int64:
		return time.Duration(v) * time.Second, nil
	case uint64:
		return time.Duration(v) * time.Second, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	case string:
		// Bare numbers in quotes are seconds as well.
		s := strings.TrimSpace(v)
		if s != "" && strings.Trim(s, "0123456789.") == "" {
			return s + "s", nil
		}
	}
	return data, nil
}
