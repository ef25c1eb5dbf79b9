package symbols

// ParameterKind describes how an argument binds to a parameter.
type ParameterKind string

const (
	ParamPositionalOnly ParameterKind = "positional_only"
	ParamPositionalOrKw ParameterKind = "positional_or_keyword"
	ParamVarPositional  ParameterKind = "var_positional"
	ParamKeywordOnly    ParameterKind = "keyword_only"
	ParamVarKeyword     ParameterKind = "var_keyword"
)

// Parameter is one entry of a function signature.
type Parameter struct {
	Name       string        `json:"name" yaml:"name"`
	Kind       ParameterKind `json:"kind,omitempty" yaml:"kind,omitempty"`
	Type       string        `json:"type,omitempty" yaml:"type,omitempty"`
	HasDefault bool          `json:"has_default,omitempty" yaml:"has_default,omitempty"`
}

// Attribute is a typed class-level variable.
type Attribute struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type,omitempty" yaml:"type,omitempty"`
}

// FunctionSymbol is a single function or method signature as seen in one version.
type FunctionSymbol struct {
	Name          string      `json:"name" yaml:"name"`
	FullName      string      `json:"fullname" yaml:"fullname"`
	Parameters    []Parameter `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	ReturnType    string      `json:"return_type,omitempty" yaml:"return_type,omitempty"`
	IsAsync       bool        `json:"is_async,omitempty" yaml:"is_async,omitempty"`
	IsStatic      bool        `json:"is_static,omitempty" yaml:"is_static,omitempty"`
	IsClassMethod bool        `json:"is_class_method,omitempty" yaml:"is_class_method,omitempty"`
	IsAbstract    bool        `json:"is_abstract,omitempty" yaml:"is_abstract,omitempty"`
	IsProperty    bool        `json:"is_property,omitempty" yaml:"is_property,omitempty"`
	Decorators    []string    `json:"decorators,omitempty" yaml:"decorators,omitempty"`
}

// OverloadedFunctionSymbol is an ordered overload set sharing one name.
type OverloadedFunctionSymbol struct {
	Name        string            `json:"name" yaml:"name"`
	FullName    string            `json:"fullname" yaml:"fullname"`
	Definitions []*FunctionSymbol `json:"definitions,omitempty" yaml:"definitions,omitempty"`
}

// ClassSymbol is a class declaration as seen in one version.
// Methods and OverloadedMethods are owned by the class but are not part of
// its shape: two classes with the same bases and attributes are equal even
// if their methods differ.
type ClassSymbol struct {
	Name              string                      `json:"name" yaml:"name"`
	FullName          string                      `json:"fullname" yaml:"fullname"`
	SuperClasses      []string                    `json:"super_classes,omitempty" yaml:"super_classes,omitempty"`
	Attributes        []Attribute                 `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Metaclass         string                      `json:"metaclass,omitempty" yaml:"metaclass,omitempty"`
	IsEnum            bool                        `json:"is_enum,omitempty" yaml:"is_enum,omitempty"`
	IsGeneric         bool                        `json:"is_generic,omitempty" yaml:"is_generic,omitempty"`
	IsProtocol        bool                        `json:"is_protocol,omitempty" yaml:"is_protocol,omitempty"`
	Decorators        []string                    `json:"decorators,omitempty" yaml:"decorators,omitempty"`
	Methods           []*FunctionSymbol           `json:"methods,omitempty" yaml:"methods,omitempty"`
	OverloadedMethods []*OverloadedFunctionSymbol `json:"overloaded_methods,omitempty" yaml:"overloaded_methods,omitempty"`
}

// ModuleSymbol is one module of a per-version symbol tree.
type ModuleSymbol struct {
	FullName            string                      `json:"fullname" yaml:"fullname"`
	Classes             []*ClassSymbol              `json:"classes,omitempty" yaml:"classes,omitempty"`
	Functions           []*FunctionSymbol           `json:"functions,omitempty" yaml:"functions,omitempty"`
	OverloadedFunctions []*OverloadedFunctionSymbol `json:"overloaded_functions,omitempty" yaml:"overloaded_functions,omitempty"`
}

// Key returns the fully-qualified name used to group function variants.
func (f *FunctionSymbol) Key() string { return f.FullName }

// Key returns the fully-qualified name used to group overload-set variants.
func (o *OverloadedFunctionSymbol) Key() string { return o.FullName }

// Key returns the fully-qualified name used to group class variants.
func (c *ClassSymbol) Key() string { return c.FullName }
