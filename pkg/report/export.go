package report

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/terralag/terralag/pkg/engine"
)

// WriteJSON emits the merged result as indented JSON.
func WriteJSON(w io.Writer, res *engine.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// WriteYAML emits the merged result as YAML.
func WriteYAML(w io.Writer, res *engine.Result) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(res)
}
