package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/registry"
)

// Overlay carries live node state to paint onto the diagram.
type Overlay struct {
	Views []domain.NodeView
}

// GenerateMermaid produces a Mermaid flowchart from a snapshot. When reg is
// given, node shapes follow the definition:
// - Source (no inputs): ((Circle))
// - Async: [[Subroutine]]
// - Boolean output: {{Hexagon}}
// - Default: [Rectangle]
// Edges are labelled with the target port. With an overlay, each node shows
// its current output and is styled by state.
func GenerateMermaid(snap *domain.Snapshot, reg *registry.Registry, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")
	if snap == nil {
		return sb.String()
	}

	views := make(map[string]domain.NodeView)
	if overlay != nil {
		for _, v := range overlay.Views {
			views[v.ID] = v
		}
	}

	for _, rec := range snap.Nodes {
		safeID := sanitizeMermaidID(rec.ID)
		opener, closer := shape(reg, rec.Type)

		label := fmt.Sprintf("%s<br/><i>%s</i>", escapeLabel(rec.ID), escapeLabel(rec.Type))
		if v, ok := views[rec.ID]; ok {
			label += "<br/>= " + escapeLabel(domain.FormatValue(v.Output))
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, label, closer)
	}

	for _, c := range snap.Connections {
		fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n",
			sanitizeMermaidID(c.Source), escapeLabel(c.Port), sanitizeMermaidID(c.Target))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef unpopulated fill:#eeeeee,stroke:#9e9e9e,color:#000;\n")
		sb.WriteString("    classDef computing fill:#fff9c4,stroke:#fbc02d,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef failed fill:#ffcdd2,stroke:#c62828,stroke-width:2px,color:#000;\n")

		ids := make([]string, 0, len(views))
		for id := range views {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			var class string
			switch views[id].State {
			case domain.StateUnpopulated:
				class = "unpopulated"
			case domain.StateComputing:
				class = "computing"
			case domain.StateError:
				class = "failed"
			default:
				continue
			}
			fmt.Fprintf(&sb, "    class %s %s;\n", sanitizeMermaidID(id), class)
		}
	}

	return sb.String()
}

func shape(reg *registry.Registry, typ string) (string, string) {
	if reg == nil {
		return "[", "]"
	}
	def, err := reg.Lookup(typ)
	if err != nil {
		return "[", "]"
	}
	switch {
	case len(def.Inputs) == 0:
		return "((", "))"
	case def.Async:
		return "[[", "]]"
	case def.Output.DataType == domain.TypeBoolean:
		return "{{", "}}"
	}
	return "[", "]"
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
