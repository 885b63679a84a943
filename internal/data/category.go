package data

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Category tags an entity kind. It keys both the pool queues and the
// carrier slots.
type Category uint8

const (
	CategoryNone Category = iota
	CategoryTypeA
	CategoryTypeB
)

var categoryNames = [...]string{
	CategoryNone:  "none",
	CategoryTypeA: "type_a",
	CategoryTypeB: "type_b",
}

// Categories lists every non-none category in declaration order.
func Categories() []Category {
	return []Category{CategoryTypeA, CategoryTypeB}
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return fmt.Sprintf("category(%d)", uint8(c))
}

// Valid reports whether c is a known, non-none category.
func (c Category) Valid() bool {
	return c != CategoryNone && int(c) < len(categoryNames)
}

// ParseCategory maps a config name to its Category.
func ParseCategory(s string) (Category, error) {
	for i, name := range categoryNames {
		if name == s {
			return Category(i), nil
		}
	}
	return CategoryNone, fmt.Errorf("unknown category %q", s)
}

func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c *Category) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	return c.UnmarshalText([]byte(s))
}
