package input

import (
	"fmt"

	"github.com/elliotchance/orderedmap/v2"
)

// Binding maps one physical key code to a control.
type Binding struct {
	Code  int
	Label string
	Key   Key
}

// Bindings is an ordered physical-key table. Order is kept for the help text.
type Bindings struct {
	byCode *orderedmap.OrderedMap[int, Binding]
}

func NewBindings(bindings ...Binding) (*Bindings, error) {
	b := &Bindings{byCode: orderedmap.NewOrderedMap[int, Binding]()}
	for _, binding := range bindings {
		if err := b.Bind(binding); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Bind adds or replaces the binding for binding.Code. Bindings to unknown
// controls are rejected.
func (b *Bindings) Bind(binding Binding) error {
	if !Valid(binding.Key) {
		return fmt.Errorf("bind %q: unknown control %q", binding.Label, binding.Key)
	}
	b.byCode.Set(binding.Code, binding)
	return nil
}

// Lookup resolves a physical key code.
func (b *Bindings) Lookup(code int) (Key, bool) {
	binding, ok := b.byCode.Get(code)
	if !ok {
		return "", false
	}
	return binding.Key, true
}

func (b *Bindings) Len() int {
	return b.byCode.Len()
}

// Help lists the bindings in the order they were added.
func (b *Bindings) Help() []string {
	lines := make([]string, 0, b.byCode.Len())
	for el := b.byCode.Front(); el != nil; el = el.Next() {
		lines = append(lines, fmt.Sprintf("  %-10s - %s", el.Value.Label, el.Value.Key))
	}
	return lines
}
