package instances

import (
	"maps"

	"llmlauncher/pkg/types"
)

// Instance is one user-named configuration of a model family.
type Instance struct {
	Name       string            `json:"name"`
	Family     string            `json:"family"`
	Properties map[string]string `json:"properties"`
}

// Label is the display label used for result panes.
func (i Instance) Label() string { return i.Name + " (" + i.Family + ")" }

func (i Instance) clone() Instance {
	out := i
	out.Properties = maps.Clone(i.Properties)
	if out.Properties == nil {
		out.Properties = map[string]string{}
	}
	return out
}

// Snapshot is the serializable state of a Store.
type Snapshot struct {
	Instances []Instance       `json:"instances"`
	Prompts   types.PromptPair `json:"prompts"`
}
