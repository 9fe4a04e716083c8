package report

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Tests is an insertion-ordered mapping of test name to outcome. It encodes
// as a JSON object whose keys keep execution order.
type Tests struct {
	order  []string
	byName map[string]TestOutcome
}

func (t *Tests) add(outcome TestOutcome) error {
	if t.byName == nil {
		t.byName = make(map[string]TestOutcome)
	}
	if _, ok := t.byName[outcome.Name]; ok {
		return fmt.Errorf("add %q: %w", outcome.Name, ErrDuplicateTest)
	}
	t.order = append(t.order, outcome.Name)
	t.byName[outcome.Name] = outcome
	return nil
}

// Len returns the number of outcomes.
func (t Tests) Len() int {
	return len(t.order)
}

// Names returns test names in execution order.
func (t Tests) Names() []string {
	return append([]string{}, t.order...)
}

// Get looks up an outcome by name.
func (t Tests) Get(name string) (TestOutcome, bool) {
	o, ok := t.byName[name]
	return o, ok
}

// All returns outcomes in execution order.
func (t Tests) All() []TestOutcome {
	out := make([]TestOutcome, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, t.byName[name])
	}
	return out
}

// MarshalJSON writes outcomes as an object keyed by name.
func (t Tests) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range t.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(t.byName[name])
		if err != nil {
			return nil, fmt.Errorf("encode test %q: %w", name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object keyed by name, preserving key order.
func (t *Tests) UnmarshalJSON(data []byte) error {
	*t = Tests{}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("test_results: expected object, got %v", tok)
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("test_results: expected key, got %v", keyTok)
		}
		var outcome TestOutcome
		if err := dec.Decode(&outcome); err != nil {
			return fmt.Errorf("decode test %q: %w", name, err)
		}
		outcome.Name = name
		if err := t.add(outcome); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
