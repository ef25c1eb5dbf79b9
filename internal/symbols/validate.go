package symbols

import (
	"errors"
	"fmt"
)

// ErrNullSymbol is returned for a module whose symbol lists contain a null entry.
var ErrNullSymbol = errors.New("null symbol entry")

// Validate reports null entries anywhere in the module tree, such as the
// item of `functions: [~]` in a dump.
func (m *ModuleSymbol) Validate() error {
	for i, cls := range m.Classes {
		if cls == nil {
			return fmt.Errorf("module %s: class #%d: %w", m.FullName, i, ErrNullSymbol)
		}
		for j, fn := range cls.Methods {
			if fn == nil {
				return fmt.Errorf("module %s: class %s: method #%d: %w", m.FullName, cls.FullName, j, ErrNullSymbol)
			}
		}
		if err := validateOverloads(cls.OverloadedMethods); err != nil {
			return fmt.Errorf("module %s: class %s: overloaded method %w", m.FullName, cls.FullName, err)
		}
	}
	for i, fn := range m.Functions {
		if fn == nil {
			return fmt.Errorf("module %s: function #%d: %w", m.FullName, i, ErrNullSymbol)
		}
	}
	if err := validateOverloads(m.OverloadedFunctions); err != nil {
		return fmt.Errorf("module %s: overloaded function %w", m.FullName, err)
	}
	return nil
}

func validateOverloads(overloads []*OverloadedFunctionSymbol) error {
	for i, o := range overloads {
		if o == nil {
			return fmt.Errorf("#%d: %w", i, ErrNullSymbol)
		}
		for j, def := range o.Definitions {
			if def == nil {
				return fmt.Errorf("%s: definition #%d: %w", o.FullName, j, ErrNullSymbol)
			}
		}
	}
	return nil
}
