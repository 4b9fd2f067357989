// Package schema validates node configuration maps.
//
// A Schema maps configuration keys to Types drawn from the same vocabulary
// used by node ports (number, boolean, numberArray, string) plus int for
// counts and sizes:
//
//	s := schema.Schema{
//	    "start": schema.Number(),
//	    "stop":  schema.Number(),
//	    "num":   schema.Int(),
//	}
//
//	if err := schema.Validate(s, cfg); err != nil {
//	    for _, e := range schema.ValidationErrors(err) {
//	        // ...
//	    }
//	}
//
// Schemas round-trip through JSON as a map of key to type name, which is how
// the HTTP and MCP adapters describe node types to clients.
package schema
