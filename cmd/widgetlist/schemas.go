package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-widgetlist/pkg/widget"
)

type violation struct {
	file     string
	location string
	message  string
}

func newSchemasCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schemas",
		Short: "Work with widget class schema files",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "lint <path>...",
		Short: "Check schema files for problems the form engine would reject or ignore",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := schemaFiles(args)
			if err != nil {
				return err
			}
			violations, classes := lintSchemaFiles(files)
			if len(violations) > 0 {
				for _, v := range violations {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s -> %s\n", v.file, v.location, v.message)
				}
				return fmt.Errorf("schemas lint: %d problem(s)", len(violations))
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "ok: %d file(s), %d class(es)\n", len(files), classes)
			return nil
		},
	})
	return cmd
}

// schemaFiles expands directories into the json and yaml files below them.
func schemaFiles(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			switch strings.ToLower(filepath.Ext(p)) {
			case ".json", ".yaml", ".yml":
				if !d.IsDir() {
					files = append(files, p)
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

func lintSchemaFiles(files []string) ([]violation, int) {
	var (
		result  []violation
		classes int
	)
	definedIn := make(map[string]string)
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			result = append(result, violation{file: file, location: "file", message: err.Error()})
			continue
		}
		schemas, err := widget.ParseSchemas(data, file)
		if err != nil {
			result = append(result, violation{file: file, location: "file", message: err.Error()})
			continue
		}
		for _, name := range schemas.Names() {
			classes++
			if prev, dup := definedIn[name]; dup {
				result = append(result, violation{
					file:     file,
					location: formatLocation([]string{"classes", name}),
					message:  fmt.Sprintf("class already defined in %s", prev),
				})
				continue
			}
			definedIn[name] = file
			fields, _ := schemas.Fields(name)
			result = append(result, lintClass(file, name, fields)...)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].file == result[j].file {
			return result[i].location < result[j].location
		}
		return result[i].file < result[j].file
	})
	return result, classes
}

func lintClass(file, class string, fields []widget.FieldDescriptor) []violation {
	base := []string{"classes", class}
	if len(fields) == 0 {
		return []violation{{file: file, location: formatLocation(base), message: "class has no fields"}}
	}

	var result []violation
	for _, field := range fields {
		path := appendPath(base, field.Key)
		if strings.TrimSpace(field.Label) == "" {
			result = append(result, violation{file: file, location: formatLocation(path), message: "field has no label"})
		}
		sel, ok := field.Input.(widget.SelectKind)
		if !ok {
			continue
		}
		if len(sel.Choices) == 0 {
			result = append(result, violation{file: file, location: formatLocation(path), message: "select field has no choices"})
			continue
		}
		seen := make(map[string]struct{}, len(sel.Choices))
		for _, choice := range sel.Choices {
			if _, dup := seen[choice.Key]; dup {
				result = append(result, violation{
					file:     file,
					location: formatLocation(appendPath(path, "choices")),
					message:  fmt.Sprintf("choice %q listed twice", choice.Key),
				})
			}
			seen[choice.Key] = struct{}{}
		}
	}
	return result
}

func appendPath(path []string, segment string) []string {
	next := append([]string(nil), path...)
	next = append(next, segment)
	return next
}

func formatLocation(path []string) string {
	return strings.Join(path, " > ")
}
