package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// StringList accepts either a list of strings or a single comma-separated
// string, so `filter: [a, b]` and `filter: "a,b"` mean the same thing in
// YAML and JSON. TOML takes arrays; entries are still split on commas by
// Normalize.
type StringList []string

// SplitCSV splits s on commas, trims each part and drops blanks.
func SplitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (l StringList) normalize() StringList {
	var out StringList
	for _, v := range l {
		out = append(out, SplitCSV(v)...)
	}
	return out
}

func (l *StringList) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*l = list
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("want a string or a list of strings: %w", err)
	}
	*l = SplitCSV(s)
	return nil
}

func (l *StringList) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.SequenceNode:
		var list []string
		if err := n.Decode(&list); err != nil {
			return err
		}
		*l = list
	case yaml.ScalarNode:
		*l = SplitCSV(n.Value)
	default:
		return fmt.Errorf("line %d: want a string or a list of strings", n.Line)
	}
	return nil
}
