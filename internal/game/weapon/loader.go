package weapon

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// bandsFile is the reserved file name holding the band order in a catalog directory.
const bandsFile = "bands.yaml"

// document is the single-file catalog layout:
//
//	bands: [short, medium, long]
//	weapons:
//	  - id: knife
//	    ...
type document struct {
	Bands   []string   `yaml:"bands"`
	Weapons []*Profile `yaml:"weapons"`
}

// Load parses a single-document catalog from r.
//
// Postcondition: Returns a validated Catalog, or an error. Malformed weapon
// data yields an error wrapping ErrInvalidProfile.
func Load(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var doc document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty catalog document", ErrInvalidProfile)
		}
		return nil, fmt.Errorf("%w: parsing catalog: %v", ErrInvalidProfile, err)
	}
	return NewCatalog(doc.Bands, doc.Weapons)
}

// LoadFile reads a single-document catalog from path.
//
// Precondition: path is a readable YAML file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadFile: cannot read %q: %w", path, err)
	}
	c, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("LoadFile %q: %w", path, err)
	}
	return c, nil
}

// LoadDir reads a catalog laid out as a directory: bands.yaml declares the
// band order and every other *.yaml file holds exactly one weapon profile.
// Files are read in lexical order.
//
// Precondition: dir is a readable directory path containing bands.yaml.
// Postcondition: returns a validated Catalog or the first encountered error.
func LoadDir(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadDir: cannot read directory %q: %w", dir, err)
	}

	bandData, err := os.ReadFile(filepath.Join(dir, bandsFile))
	if err != nil {
		return nil, fmt.Errorf("LoadDir: cannot read %s in %q: %w", bandsFile, dir, err)
	}
	var bandsDoc struct {
		Bands []string `yaml:"bands"`
	}
	if err := decodeStrict(bandData, &bandsDoc); err != nil {
		return nil, fmt.Errorf("%w: LoadDir: parsing %s: %v", ErrInvalidProfile, bandsFile, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") || e.Name() == bandsFile {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	profiles := make([]*Profile, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadDir: cannot read file %q: %w", path, err)
		}
		var p Profile
		if err := decodeStrict(data, &p); err != nil {
			return nil, fmt.Errorf("%w: LoadDir: cannot parse file %q: %v", ErrInvalidProfile, path, err)
		}
		profiles = append(profiles, &p)
	}
	return NewCatalog(bandsDoc.Bands, profiles)
}

func decodeStrict(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(out)
}
