package domain

import "fmt"

// Connection is a directed edge from Source's output into Target's input Port.
type Connection struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
	Port   string `json:"port" yaml:"port"`
}

func (c Connection) String() string {
	return fmt.Sprintf("%s -> %s.%s", c.Source, c.Target, c.Port)
}

// Touches reports whether the connection references node id on either end.
func (c Connection) Touches(id string) bool {
	return c.Source == id || c.Target == id
}
