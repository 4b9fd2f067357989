/*
Package dsl provides a fluent Go builder for weft graphs.

It lets programs and tests declare nodes, their configuration, free inputs
and wiring in code instead of YAML or markdown files.

Example usage:

	b := dsl.New()

	b.Add("start", "Constant").Config("value", 3).To("sum", "a")
	b.Add("sum", "Add").Input("b", 4)

	// The result is a ports.GraphLoader.
	loader, err := b.Build()
	if err != nil {
		return err
	}
	snap, _ := loader.Load(ctx)
	err = engine.Restore(ctx, snap)
*/
package dsl
