package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jwebster45206/kingdom-engine/pkg/court"
	"github.com/jwebster45206/kingdom-engine/pkg/crisis"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <catalog.yaml> [catalog.yaml...]\n", os.Args[0])
		os.Exit(1)
	}

	tables, err := court.DefaultTables()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load court tables: %v\n", err)
		os.Exit(1)
	}

	failed := false
	for _, filename := range os.Args[1:] {
		validator := &CatalogValidator{tables: tables, out: os.Stdout}
		if err := validator.validateFile(filename); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			failed = true
			continue
		}
		fmt.Printf("%s is valid!\n", filename)
	}
	if failed {
		os.Exit(1)
	}
}

var catalogFilename = regexp.MustCompile(`^[a-z0-9]+(_[a-z0-9]+)*$`)

// CatalogValidator checks a crisis catalog file and that its chain stages
// name known court generators.
type CatalogValidator struct {
	tables *court.Tables
	out    io.Writer
	errors []string
}

func (v *CatalogValidator) validateFile(filename string) error {
	fmt.Fprintf(v.out, "Validating %s...\n", filename)

	baseName := filepath.Base(filename)
	ext := filepath.Ext(baseName)
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("catalog file must have .yaml extension: %s", baseName)
	}
	if name := strings.TrimSuffix(baseName, ext); !catalogFilename.MatchString(name) {
		return fmt.Errorf("catalog filename '%s' must be lowercase snake_case (e.g., my_catalog.yaml)", baseName)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	v.errors = nil
	issues, err := crisis.Validate(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("file %s failed strict YAML decoding: %w", filename, err)
	}
	for _, issue := range issues {
		v.errors = append(v.errors, "  - "+issue.Error())
	}

	if len(issues) == 0 {
		v.validateGenerators(data)
	}

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}
	return nil
}

// validateGenerators reports chain stages whose generator has no court
// template. Only called on catalogs that load cleanly.
func (v *CatalogValidator) validateGenerators(data []byte) {
	cat, err := crisis.LoadCatalog(bytes.NewReader(data))
	if err != nil {
		v.errors = append(v.errors, "  - "+err.Error())
		return
	}
	known := make([]string, 0, len(v.tables.Stages))
	for key := range v.tables.Stages {
		known = append(known, key)
	}
	for _, def := range cat.All() {
		for _, st := range def.Stages {
			if _, ok := v.tables.Stages[st.GeneratorKey]; ok {
				continue
			}
			issue := &crisis.ConfigurationError{
				Subject:    fmt.Sprintf("%s.stages[%s].generator", def.ID, st.ID),
				Detail:     fmt.Sprintf("unknown generator %q", st.GeneratorKey),
				Suggestion: crisis.Suggest(st.GeneratorKey, known),
			}
			v.errors = append(v.errors, "  - "+issue.Error())
		}
	}
}
