package city

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed cities/*
var demoFS embed.FS

// IsDescriptorExt reports whether ext (with the dot) names a descriptor format.
func IsDescriptorExt(ext string) bool {
	switch strings.ToLower(ext) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// Load reads a descriptor file. The format follows the extension. A
// descriptor without a name is named after its file.
func Load(p string) (*Descriptor, error) {
	ext := strings.ToLower(filepath.Ext(p))
	if !IsDescriptorExt(ext) {
		return nil, fmt.Errorf("unsupported city format %s", ext)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("reading city: %w", err)
	}
	return Parse(data, ext, strings.TrimSuffix(filepath.Base(p), filepath.Ext(p)))
}

// Parse decodes a descriptor. ext selects JSON or YAML; name is used when
// the data does not carry one.
func Parse(data []byte, ext, name string) (*Descriptor, error) {
	var d Descriptor
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, &DataError{City: name, Field: "file", Reason: "malformed json", Err: err}
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&d); err != nil {
			return nil, &DataError{City: name, Field: "file", Reason: "malformed yaml", Err: err}
		}
	default:
		return nil, fmt.Errorf("unsupported city format %s", ext)
	}
	if d.Name == "" {
		d.Name = name
	}
	return &d, nil
}

// Scan returns the descriptor files directly inside dir, sorted by name.
func Scan(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading city directory: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !IsDescriptorExt(filepath.Ext(e.Name())) {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

// Demos returns the cities bundled with the binary.
func Demos() ([]*Descriptor, error) {
	names, err := fs.Glob(demoFS, "cities/*")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	var out []*Descriptor
	for _, n := range names {
		ext := path.Ext(n)
		if !IsDescriptorExt(ext) {
			continue
		}
		data, err := demoFS.ReadFile(n)
		if err != nil {
			return nil, fmt.Errorf("reading demo city: %w", err)
		}
		d, err := Parse(data, ext, strings.TrimSuffix(path.Base(n), ext))
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
