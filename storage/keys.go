package storage

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/c360studio/nidm-annotate/annotation"
)

// EncodeKey maps a descriptor to a KV key of the form <source>.<variable>.
// Bytes outside [A-Za-z0-9_-] are written as =XX so that dots, spaces and
// the escape character itself survive the round trip.
func EncodeKey(d annotation.Descriptor) string {
	return escape(d.Source) + "." + escape(d.Variable)
}

// DecodeKey reverses EncodeKey.
func DecodeKey(key string) (annotation.Descriptor, error) {
	source, variable, ok := strings.Cut(key, ".")
	if !ok {
		return annotation.Descriptor{}, fmt.Errorf("invalid annotation key: %s", key)
	}
	s, err := unescape(source)
	if err != nil {
		return annotation.Descriptor{}, fmt.Errorf("invalid annotation key %s: %w", key, err)
	}
	v, err := unescape(variable)
	if err != nil {
		return annotation.Descriptor{}, fmt.Errorf("invalid annotation key %s: %w", key, err)
	}
	return annotation.NewDescriptor(s, v), nil
}

// sourcePrefix returns the key prefix shared by every variable of source.
func sourcePrefix(source string) string {
	return escape(source) + "."
}

func escape(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '-':
			sb.WriteByte(c)
		default:
			fmt.Fprintf(&sb, "=%02X", c)
		}
	}
	return sb.String()
}

func unescape(s string) (string, error) {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '=' {
			sb.WriteByte(s[i])
			continue
		}
		if i+2 >= len(s) {
			return "", fmt.Errorf("truncated escape at offset %d", i)
		}
		b, err := strconv.ParseUint(s[i+1:i+3], 16, 8)
		if err != nil {
			return "", fmt.Errorf("bad escape at offset %d: %w", i, err)
		}
		sb.WriteByte(byte(b))
		i += 2
	}
	return sb.String(), nil
}
