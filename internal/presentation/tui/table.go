package tui

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/aretw0/weft/pkg/domain"
)

// maxCell truncates long values such as large arrays.
const maxCell = 60

func newTable(w io.Writer, styled bool) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	if styled {
		t.SetStyle(table.StyleRounded)
	} else {
		t.SetStyle(table.StyleLight)
		t.Style().Color = table.ColorOptions{}
	}
	return t
}

func header(styled bool, cols ...string) table.Row {
	row := make(table.Row, len(cols))
	for i, c := range cols {
		if styled {
			row[i] = text.FgHiCyan.Sprint(c)
		} else {
			row[i] = c
		}
	}
	return row
}

// RenderNodes writes one row per node: id, type, state, inputs, output.
func RenderNodes(w io.Writer, views []domain.NodeView, styled bool) {
	t := newTable(w, styled)
	t.AppendHeader(header(styled, "NODE", "TYPE", "STATE", "INPUTS", "OUTPUT"))

	for _, v := range views {
		state := v.State.String()
		if styled {
			state = stateColor(v.State).Sprint(state)
		}
		output := truncate(domain.FormatValue(v.Output))
		if v.Error != "" {
			output += " (" + truncate(v.Error) + ")"
		}
		t.AppendRow(table.Row{v.ID, v.Type, state, formatInputs(v.Inputs), output})
	}
	t.Render()
}

// RenderTypes writes the node catalog as a table.
func RenderTypes(w io.Writer, defs []*domain.Definition, styled bool) {
	t := newTable(w, styled)
	t.AppendHeader(header(styled, "TYPE", "CATEGORY", "INPUTS", "OUTPUT", "ASYNC"))
	for _, d := range defs {
		ins := make([]string, 0, len(d.Inputs))
		for _, p := range d.Inputs {
			ins = append(ins, fmt.Sprintf("%s:%s", p.Name, p.DataType))
		}
		async := ""
		if d.Async {
			async = "yes"
		}
		t.AppendRow(table.Row{d.Type, d.Category, strings.Join(ins, " "), string(d.Output.DataType), async})
	}
	t.Render()
}

// RenderOutputs writes a compact id = value listing.
func RenderOutputs(w io.Writer, views []domain.NodeView) {
	for _, v := range views {
		fmt.Fprintf(w, "%s = %s\n", v.ID, domain.FormatValue(v.Output))
	}
}

func formatInputs(in map[string]domain.Value) string {
	names := make([]string, 0, len(in))
	for k := range in {
		names = append(names, k)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, k := range names {
		parts = append(parts, k+"="+truncate(domain.FormatValue(in[k])))
	}
	return strings.Join(parts, " ")
}

func stateColor(s domain.NodeState) text.Colors {
	switch s {
	case domain.StatePopulated:
		return text.Colors{text.FgGreen}
	case domain.StateComputing:
		return text.Colors{text.FgYellow}
	case domain.StateError:
		return text.Colors{text.FgRed, text.Bold}
	default:
		return text.Colors{text.FgHiBlack}
	}
}

func truncate(s string) string {
	if len(s) > maxCell {
		return s[:maxCell-3] + "..."
	}
	return s
}
