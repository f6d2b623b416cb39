package statutory

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML rule table from path. Sections absent from the file keep
// their Default() values.
func Load(path string) (Rules, error) {
	f, err := os.Open(path)
	if err != nil {
		return Rules{}, fmt.Errorf("open rules file: %w", err)
	}
	defer f.Close()

	rules, err := Decode(f)
	if err != nil {
		return Rules{}, fmt.Errorf("%s: %w", path, err)
	}
	return rules, nil
}

// Decode parses a YAML rule table on top of Default() and validates the result.
func Decode(r io.Reader) (Rules, error) {
	rules := Default()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&rules); err != nil && err != io.EOF {
		return Rules{}, fmt.Errorf("decode rules: %w", err)
	}
	if err := rules.Validate(); err != nil {
		return Rules{}, fmt.Errorf("invalid rules: %w", err)
	}
	return rules, nil
}

// Encode writes rules as YAML.
func Encode(w io.Writer, rules Rules) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(rules); err != nil {
		return fmt.Errorf("encode rules: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode rules: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
