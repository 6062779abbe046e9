package reference

import "admincfg/internal/dsl"

// EnumDirectory is one enum catalog file.
type EnumDirectory struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	Items       []EnumItem `yaml:"items"`
}

type EnumItem struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
	// Order sorts items; equal orders keep file order.
	Order int `yaml:"order,omitempty"`
}

// Choice converts the item into a field choice. The code doubles as the
// label when the item has no name.
func (it EnumItem) Choice() dsl.Choice {
	label := it.Name
	if label == "" {
		label = it.Code
	}
	return dsl.Choice{Value: it.Code, Label: label}
}
