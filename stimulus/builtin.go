package stimulus

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"
)

//go:embed scenarios/*.yaml
var scenarios embed.FS

// BuiltinNames lists the stimulus files shipped with the package.
func BuiltinNames() []string {
	entries, err := scenarios.ReadDir("scenarios")
	if err != nil {
		panic(err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}

	sort.Strings(names)

	return names
}

// Builtin returns a stimulus file shipped with the package.
func Builtin(name string) (*File, error) {
	data, err := scenarios.ReadFile(path.Join("scenarios", name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("no builtin stimulus %q", name)
	}

	return Parse(data)
}
