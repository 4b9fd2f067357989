package domain

// NodeRecord is the persisted form of a node. Inputs holds only values set
// directly by callers; inputs fed by a connection are re-derived on load.
type NodeRecord struct {
	ID     string         `json:"id" yaml:"id"`
	Type   string         `json:"type" yaml:"type"`
	Config map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
	Inputs map[string]any `json:"inputs,omitempty" yaml:"inputs,omitempty"`
}

// Snapshot is the persisted form of a graph. Node and connection order is
// preserved so that a restored graph propagates in the same order.
type Snapshot struct {
	Nodes       []NodeRecord `json:"nodes" yaml:"nodes"`
	Connections []Connection `json:"connections" yaml:"connections"`
}

// Clone returns a deep copy of the snapshot's slices and maps.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := &Snapshot{
		Nodes:       make([]NodeRecord, len(s.Nodes)),
		Connections: append([]Connection(nil), s.Connections...),
	}
	for i, n := range s.Nodes {
		out.Nodes[i] = NodeRecord{
			ID:     n.ID,
			Type:   n.Type,
			Config: cloneMap(n.Config),
			Inputs: cloneMap(n.Inputs),
		}
	}
	return out
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	return Config(m).Clone()
}
