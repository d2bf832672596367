// Package track turns two-line element sets into sampled ground tracks and
// derives the left and right swath edges that bound what a sensor can see.
package track

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrBadElements is returned for element sets that fail format validation.
var ErrBadElements = errors.New("malformed element set")

// Elements is a two-line element set with its display name.
type Elements struct {
	Name  string `toml:"name"  json:"name"  yaml:"name"`
	Line1 string `toml:"line1" json:"line1" yaml:"line1"`
	Line2 string `toml:"line2" json:"line2" yaml:"line2"`
}

// Validate performs the fixed-width format checks that can be done without
// parsing the orbital fields. The propagator performs the rest.
func (e Elements) Validate() error {
	l1 := strings.TrimSpace(e.Line1)
	l2 := strings.TrimSpace(e.Line2)

	if len(l1) != 69 {
		return fmt.Errorf("%w: line 1 length %d, expected 69", ErrBadElements, len(l1))
	}
	if len(l2) != 69 {
		return fmt.Errorf("%w: line 2 length %d, expected 69", ErrBadElements, len(l2))
	}
	if l1[0] != '1' {
		return fmt.Errorf("%w: line 1 must start with '1', got %q", ErrBadElements, l1[0])
	}
	if l2[0] != '2' {
		return fmt.Errorf("%w: line 2 must start with '2', got %q", ErrBadElements, l2[0])
	}
	if strings.TrimSpace(l1[2:7]) != strings.TrimSpace(l2[2:7]) {
		return fmt.Errorf("%w: catalog numbers differ (%q vs %q)", ErrBadElements, l1[2:7], l2[2:7])
	}
	return nil
}

// String renders the element set in the three-line form served by CelesTrak.
func (e Elements) String() string {
	name := strings.TrimSpace(e.Name)
	if name == "" {
		name = "UNKNOWN"
	}
	return name + "\n" + strings.TrimSpace(e.Line1) + "\n" + strings.TrimSpace(e.Line2)
}

// CatalogNumber parses the NORAD catalog number from line 1, or returns 0
// when the field is not numeric.
func (e Elements) CatalogNumber() int {
	l1 := strings.TrimSpace(e.Line1)
	if len(l1) < 7 {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(l1[2:7]))
	if err != nil {
		return 0
	}
	return n
}
