package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/weft/pkg/domain"
)

// CatalogMarkdown documents node definitions as markdown, grouped by
// category in the order categories first appear.
func CatalogMarkdown(defs []*domain.Definition) string {
	var sb strings.Builder
	sb.WriteString("# Node catalog\n")

	var cats []string
	byCat := make(map[string][]*domain.Definition)
	for _, d := range defs {
		if _, ok := byCat[d.Category]; !ok {
			cats = append(cats, d.Category)
		}
		byCat[d.Category] = append(byCat[d.Category], d)
	}

	for _, c := range cats {
		title := c
		if title == "" {
			title = "other"
		}
		fmt.Fprintf(&sb, "\n## %s\n", title)
		for _, d := range byCat[c] {
			fmt.Fprintf(&sb, "\n### %s\n\n", d.Type)
			if d.Description != "" {
				sb.WriteString(d.Description + "\n\n")
			}
			if len(d.Inputs) == 0 {
				sb.WriteString("- inputs: none\n")
			}
			for _, p := range d.Inputs {
				fmt.Fprintf(&sb, "- input `%s`: %s\n", p.Name, p.DataType)
			}
			fmt.Fprintf(&sb, "- output: %s\n", d.Output.DataType)
			if len(d.DefaultConfig) > 0 {
				keys := d.ConfigSchema.Keys()
				for _, k := range keys {
					fmt.Fprintf(&sb, "- config `%s` (default `%v`)\n", k, d.DefaultConfig[k])
				}
			}
			if d.Async {
				sb.WriteString("- async\n")
			}
		}
	}
	return sb.String()
}
