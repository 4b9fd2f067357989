package cli

import (
	"fmt"
	"os"

	"github.com/aretw0/weft/pkg/adapters/file"
	"github.com/aretw0/weft/pkg/adapters/loam"
	"github.com/aretw0/weft/pkg/ports"
)

// Source is a graph loader that can also report changes.
type Source interface {
	ports.GraphLoader
	ports.Watchable
}

// OpenSource picks a loader for path: a directory is read as a loam
// repository of node documents, anything else as a YAML or JSON graph file.
func OpenSource(path string) (Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("open graph %s: %w", path, err)
	}
	if info.IsDir() {
		l, err := loam.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open graph %s: %w", path, err)
		}
		return l, nil
	}
	return file.NewLoader(path), nil
}
