package reference

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"admincfg/internal/dsl"
)

// Catalog holds enum directories by name and serves them as field choices.
type Catalog map[string]EnumDirectory

// LoadEnumCatalog reads every *.yaml / *.yml file in dir.
// The catalog name is the file's name: key, or the file name without extension.
func LoadEnumCatalog(dir string) (Catalog, error) {
	result := make(Catalog)
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read enums dir %s: %w", dir, err)
	}
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		ext := filepath.Ext(file.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		path := filepath.Join(dir, file.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		var enumDir EnumDirectory
		if err := yaml.Unmarshal(data, &enumDir); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		enumName := enumDir.Name
		if enumName == "" {
			enumName = strings.TrimSuffix(file.Name(), ext)
		}
		if _, dup := result[enumName]; dup {
			return nil, fmt.Errorf("duplicate enum catalog %q in %s", enumName, path)
		}
		enumDir.Name = enumName
		result[enumName] = enumDir
	}
	return result, nil
}

// Choices returns the items of catalog name as choices: code is the value,
// name the label (the code when name is empty).
func (c Catalog) Choices(name string) ([]dsl.Choice, bool) {
	dir, ok := c[name]
	if !ok {
		return nil, false
	}
	items := append([]EnumItem(nil), dir.Items...)
	sort.SliceStable(items, func(i, j int) bool { return items[i].Order < items[j].Order })

	out := make([]dsl.Choice, 0, len(items))
	for _, it := range items {
		out = append(out, it.Choice())
	}
	return out, true
}

// Names returns the catalog names, sorted.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for n := range c {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
