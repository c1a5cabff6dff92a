package ranges

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// specDocument is the on-disk layout of a range specification:
// task -> variable -> ordered checkpoint list.
type specDocument map[string]map[string][]Checkpoint

// ParseSpec builds a validated Store from a YAML range specification
// document. A malformed document is a configuration error and fails
// here, before any validation work can consume it.
func ParseSpec(data []byte) (*Store, error) {
	var doc specDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse range spec: %w", err)
	}
	store := NewStore()
	for task, vars := range doc {
		for variable, cps := range vars {
			if err := store.Replace(task, variable, cps); err != nil {
				return nil, err
			}
		}
	}
	return store, nil
}

// LoadSpec reads and parses a YAML range specification file.
func LoadSpec(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read range spec: %w", err)
	}
	return ParseSpec(data)
}

// EncodeSpec serializes a snapshot back to the YAML document layout
// with deterministic key order.
func EncodeSpec(sn *Snapshot) ([]byte, error) {
	doc := make(specDocument, len(sn.tasks))
	for _, task := range sn.Tasks() {
		vars := make(map[string][]Checkpoint)
		for _, variable := range sn.Variables(task) {
			cps, _ := sn.Get(task, variable)
			vars[variable] = cps
		}
		doc[task] = vars
	}
	return yaml.Marshal(doc)
}

// WriteSpec writes a snapshot as a YAML specification file. Tuned
// candidates go through here for review before anyone calls Replace
// on the active store.
func WriteSpec(path string, sn *Snapshot) error {
	data, err := EncodeSpec(sn)
	if err != nil {
		return fmt.Errorf("encode range spec: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write range spec: %w", err)
	}
	return nil
}
