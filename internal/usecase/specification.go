package usecase

import (
	"strings"
)

type Specification struct {
	Key   string
	Value string
}

// Specifications is an ordered string map. Keys are unique; a repeated key
// overwrites the earlier value in place.
type Specifications []Specification

// ParseSpecifications reads one "key:value" pair per line. Lines without a
// colon, or with an empty key or value, are skipped. Only the first colon
// separates key from value.
func ParseSpecifications(text string) Specifications {
	var specs Specifications
	for line := range strings.Lines(text) {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		specs = specs.Set(key, value)
	}
	return specs
}

func (s Specifications) Set(key, value string) Specifications {
	for i := range s {
		if s[i].Key == key {
			s[i].Value = value
			return s
		}
	}
	return append(s, Specification{Key: key, Value: value})
}

func (s Specifications) Get(key string) (string, bool) {
	for _, sp := range s {
		if sp.Key == key {
			return sp.Value, true
		}
	}
	return "", false
}

func (s Specifications) Map() map[string]string {
	m := make(map[string]string, len(s))
	for _, sp := range s {
		m[sp.Key] = sp.Value
	}
	return m
}

// Text renders the form representation accepted by ParseSpecifications.
func (s Specifications) Text() string {
	lines := make([]string, 0, len(s))
	for _, sp := range s {
		lines = append(lines, sp.Key+": "+sp.Value)
	}
	return strings.Join(lines, "\n")
}
