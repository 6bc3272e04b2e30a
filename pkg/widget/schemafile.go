package widget

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type schemaFile struct {
	Classes ClassSchemas `json:"classes" yaml:"classes"`
}

// LoadSchemasFS walks fsys and merges every JSON/YAML schema file into one
// set. Each file holds a top level "classes" mapping. A class defined in two
// files is an error. A nil fsys yields an empty set.
func LoadSchemasFS(fsys fs.FS) (*ClassSchemas, error) {
	out := NewClassSchemas()
	if fsys == nil {
		return out, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isSchemaFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("widget: read %s: %w", path, err)
		}
		doc, err := parseSchemaFile(data, path)
		if err != nil {
			return err
		}
		for _, name := range doc.Classes.Names() {
			fields, _ := doc.Classes.Fields(name)
			if err := out.Add(name, fields); err != nil {
				return fmt.Errorf("%w (file %s)", err, path)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ParseSchemas decodes one schema file. source picks the format by
// extension and names the file in errors.
func ParseSchemas(data []byte, source string) (*ClassSchemas, error) {
	doc, err := parseSchemaFile(data, source)
	if err != nil {
		return nil, err
	}
	out := NewClassSchemas()
	for _, name := range doc.Classes.Names() {
		fields, _ := doc.Classes.Fields(name)
		if err := out.Add(name, fields); err != nil {
			return nil, fmt.Errorf("%w (file %s)", err, source)
		}
	}
	return out, nil
}

func parseSchemaFile(data []byte, source string) (schemaFile, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return schemaFile{}, fmt.Errorf("widget: schema file %s is empty", source)
	}

	var doc schemaFile
	switch strings.ToLower(filepath.Ext(source)) {
	case ".json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return schemaFile{}, fmt.Errorf("widget: parse %s: %w", source, err)
		}
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return schemaFile{}, fmt.Errorf("widget: parse %s: %w", source, err)
		}
	}
	return doc, nil
}

func isSchemaFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
