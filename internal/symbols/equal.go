package symbols

import "slices"

// Equal reports whether two function symbols describe the same API surface.
func (f *FunctionSymbol) Equal(other *FunctionSymbol) bool {
	if f == nil || other == nil {
		return f == other
	}
	return f.Name == other.Name &&
		f.FullName == other.FullName &&
		f.ReturnType == other.ReturnType &&
		f.IsAsync == other.IsAsync &&
		f.IsStatic == other.IsStatic &&
		f.IsClassMethod == other.IsClassMethod &&
		f.IsAbstract == other.IsAbstract &&
		f.IsProperty == other.IsProperty &&
		slices.Equal(f.Parameters, other.Parameters) &&
		slices.Equal(f.Decorators, other.Decorators)
}

// Equal reports whether two overload sets have the same definitions in the same order.
func (o *OverloadedFunctionSymbol) Equal(other *OverloadedFunctionSymbol) bool {
	if o == nil || other == nil {
		return o == other
	}
	return o.Name == other.Name &&
		o.FullName == other.FullName &&
		slices.EqualFunc(o.Definitions, other.Definitions, (*FunctionSymbol).Equal)
}

// Equal compares class shapes. Members are merged separately per class variant
// and do not take part in the comparison.
func (c *ClassSymbol) Equal(other *ClassSymbol) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.Name == other.Name &&
		c.FullName == other.FullName &&
		c.Metaclass == other.Metaclass &&
		c.IsEnum == other.IsEnum &&
		c.IsGeneric == other.IsGeneric &&
		c.IsProtocol == other.IsProtocol &&
		slices.Equal(c.SuperClasses, other.SuperClasses) &&
		slices.Equal(c.Attributes, other.Attributes) &&
		slices.Equal(c.Decorators, other.Decorators)
}

// Shape returns a copy of the class without its members.
func (c *ClassSymbol) Shape() *ClassSymbol {
	s := *c
	s.Methods = nil
	s.OverloadedMethods = nil
	return &s
}
