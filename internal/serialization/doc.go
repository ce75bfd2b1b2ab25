// Package serialization reads and writes model description files.
//
// A description file holds one model.Description encoded as JSON or YAML,
// selected by file extension:
//
//	.json        encoding/json, unknown fields rejected
//	.yaml, .yml  gopkg.in/yaml.v3, unknown fields rejected
//
// Files are size-limited and their names validated before a model is
// rebuilt from them. A description's fingerprint is the SHA-256 of its
// canonical JSON encoding, so two files describing the same topology and
// configuration share a fingerprint regardless of format or layout.
//
// Example usage:
//
//	// Save a model description
//	d, err := m.Describe()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := serialization.WriteFile("model.yaml", d); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Load it back
//	d, err = serialization.ReadFile("model.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	m, err = model.FromDescription(d)
package serialization
