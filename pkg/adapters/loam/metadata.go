package loam

// NodeMetadata is the frontmatter of a node document. The markdown body is
// free-form notes and is not interpreted.
type NodeMetadata struct {
	ID     string         `json:"id" mapstructure:"id"`
	Type   string         `json:"type" mapstructure:"type"`
	Config map[string]any `json:"config,omitempty" mapstructure:"config"`
	Inputs map[string]any `json:"inputs,omitempty" mapstructure:"inputs"`
	// Wires are the node's outgoing connections.
	Wires []Wire `json:"wires,omitempty" mapstructure:"wires"`
}

// Wire connects the owning node's output to another node's input port.
type Wire struct {
	To   string `json:"to" mapstructure:"to"`
	Port string `json:"port" mapstructure:"port"`
}
