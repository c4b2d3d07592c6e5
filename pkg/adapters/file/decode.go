package file

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/simflow/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Extensions lists the file types a form definition can be read from,
// in lookup order.
var Extensions = []string{".yaml", ".yml", ".json"}

// ParseForm decodes a definition document. ext selects the syntax (".json"
// or YAML for anything else).
//
// The document is either a mapping with id, title and blocks, or a bare list
// of blocks.
func ParseForm(data []byte, ext string) (*domain.Form, error) {
	var raw any
	if strings.EqualFold(ext, ".json") {
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("invalid json: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}
	return DecodeForm(raw)
}

// DecodeForm maps a generic document onto a Form. Targets are decoded from
// their string form ("next_block", "stop_flow" or a question id).
func DecodeForm(raw any) (*domain.Form, error) {
	if list, ok := raw.([]any); ok {
		raw = map[string]any{"blocks": list}
	}
	if raw == nil {
		return nil, fmt.Errorf("empty form document")
	}

	form := &domain.Form{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
		),
		TagName: "mapstructure",
		Result:  form,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode form: %w", err)
	}
	for i := range form.Blocks {
		for j := range form.Blocks[i].Questions {
			q := &form.Blocks[i].Questions[j]
			for key, p := range q.Placeholders {
				if p.Type == "" {
					return nil, fmt.Errorf("question %s: placeholder %s has no type", q.ID, key)
				}
			}
		}
	}
	return form, nil
}

func formID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
