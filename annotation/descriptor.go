package annotation

import (
	"fmt"
	"regexp"
	"strings"
)

// Descriptor identifies one annotated variable of an assessment.
// It is comparable and used directly as a map key; its string form is only
// produced at serialization boundaries.
type Descriptor struct {
	Source   string
	Variable string
}

// NewDescriptor returns the descriptor for variable of source.
func NewDescriptor(source, variable string) Descriptor {
	return Descriptor{Source: source, Variable: variable}
}

// String returns the canonical form DD(source='<source>', variable='<variable>').
func (d Descriptor) String() string {
	return fmt.Sprintf("DD(source='%s', variable='%s')", d.Source, d.Variable)
}

// MarshalText implements encoding.TextMarshaler so descriptors can key JSON objects.
func (d Descriptor) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Descriptor) UnmarshalText(text []byte) error {
	parsed, err := ParseDescriptor(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// quoted matches a single- or double-quoted value. RE2 has no
// backreferences, so each quote style gets its own group.
const quoted = `(?:'([^']*)'|"([^"]*)")`

var descriptorPattern = regexp.MustCompile(
	`^DD\(\s*source\s*=\s*` + quoted + `\s*,\s*variable\s*=\s*` + quoted + `\s*\)$`)

// ParseDescriptor parses the canonical descriptor form. Double quotes and
// surrounding whitespace are tolerated.
func ParseDescriptor(s string) (Descriptor, error) {
	m := descriptorPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Descriptor{}, fmt.Errorf("%w: invalid descriptor %q", ErrValidation, s)
	}
	return Descriptor{
		Source:   m[1] + m[2],
		Variable: m[3] + m[4],
	}, nil
}

// IsDescriptor reports whether s parses as a descriptor.
func IsDescriptor(s string) bool {
	return descriptorPattern.MatchString(strings.TrimSpace(s))
}
