package weapon

import (
	"fmt"
	"sort"
	"strings"
)

// Catalog holds the ordered range bands and every weapon profile indexed by ID.
//
// A Catalog is immutable once built, so concurrent readers need no locking.
type Catalog struct {
	bands     []string
	bandIndex map[string]int
	weapons   map[string]*Profile
}

// NewCatalog validates bands and profiles and builds a Catalog.
// bands are ordered closest first.
//
// Postcondition: Returns a Catalog or an error wrapping ErrInvalidProfile that
// names every offending weapon.
func NewCatalog(bands []string, profiles []*Profile) (*Catalog, error) {
	if err := validateBands(bands); err != nil {
		return nil, err
	}
	c := &Catalog{
		bands:     append([]string(nil), bands...),
		bandIndex: make(map[string]int, len(bands)),
		weapons:   make(map[string]*Profile, len(profiles)),
	}
	for i, b := range bands {
		c.bandIndex[b] = i
	}

	var errs []string
	for _, p := range profiles {
		if p == nil {
			errs = append(errs, "nil profile")
			continue
		}
		if err := p.Validate(c.bands); err != nil {
			errs = append(errs, err.Error())
			continue
		}
		if _, exists := c.weapons[p.ID]; exists {
			errs = append(errs, fmt.Sprintf("weapon %q defined twice", p.ID))
			continue
		}
		c.weapons[p.ID] = p
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidProfile, strings.Join(errs, " | "))
	}
	return c, nil
}

func validateBands(bands []string) error {
	if len(bands) == 0 {
		return fmt.Errorf("%w: catalog must declare at least one range band", ErrInvalidProfile)
	}
	seen := make(map[string]bool, len(bands))
	for _, b := range bands {
		if b == "" {
			return fmt.Errorf("%w: range band names must not be empty", ErrInvalidProfile)
		}
		if seen[b] {
			return fmt.Errorf("%w: range band %q declared twice", ErrInvalidProfile, b)
		}
		seen[b] = true
	}
	return nil
}

// Get returns the profile for id.
//
// Postcondition: Returns the profile, or an error wrapping ErrNotFound.
func (c *Catalog) Get(id string) (*Profile, error) {
	p, ok := c.weapons[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return p, nil
}

// Bands returns a copy of the ordered band list, closest first.
func (c *Catalog) Bands() []string {
	return append([]string(nil), c.bands...)
}

// BandIndex returns the position of band in the catalog order.
func (c *Catalog) BandIndex(band string) (int, bool) {
	i, ok := c.bandIndex[band]
	return i, ok
}

// All returns every profile sorted by ID.
func (c *Catalog) All() []*Profile {
	out := make([]*Profile, 0, len(c.weapons))
	for _, p := range c.weapons {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of weapons in the catalog.
func (c *Catalog) Len() int {
	return len(c.weapons)
}
