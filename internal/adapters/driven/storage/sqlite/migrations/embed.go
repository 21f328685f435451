// Package migrations holds the numbered SQL migrations of the SQLite record
// store. Files are named NNN_name.up.sql and NNN_name.down.sql.
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed *.sql
var files embed.FS

const upSuffix = ".up.sql"

// Migration is one forward schema step.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Up returns the forward migrations ordered by version.
func Up() ([]Migration, error) {
	return load(files)
}

// Latest returns the schema version the store is migrated to on open.
// Zero means no migration could be read.
func Latest() int {
	ups, err := Up()
	if err != nil || len(ups) == 0 {
		return 0
	}
	return ups[len(ups)-1].Version
}

func load(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("reading migrations: %w", err)
	}

	var out []Migration
	seen := make(map[int]string)
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, upSuffix) {
			continue
		}
		// "001_initial.up.sql" -> 1, "initial"
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil || version <= 0 {
			return nil, fmt.Errorf("migration %s: name must start with a positive version", name)
		}
		if prev, dup := seen[version]; dup {
			return nil, fmt.Errorf("migration %s: version %d already used by %s", name, version, prev)
		}
		seen[version] = name

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("reading migration %s: %w", name, err)
		}
		label := strings.TrimSuffix(name, upSuffix)
		if i := strings.IndexByte(label, '_'); i >= 0 {
			label = label[i+1:]
		}
		out = append(out, Migration{Version: version, Name: label, SQL: string(content)})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}
