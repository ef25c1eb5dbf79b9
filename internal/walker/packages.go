package walker

import (
	"context"
	"fmt"
	"go/types"
	"log/slog"
	"os"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/abramin/symmerge/internal/config"
	"github.com/abramin/symmerge/internal/symbols"
)

// LoadMode defines the packages.Load mode needed to describe exported APIs.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedTypes |
	packages.NeedModule

const maxReportedErrors = 5

// Packages loads Go packages once per version, each version being a build
// configuration (tags and environment such as GOOS/GOARCH). Every package is
// reported as a module; named types become classes.
type Packages struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewPackages creates a Go packages walker.
func NewPackages(cfg *config.Config, logger *slog.Logger) *Packages {
	if logger == nil {
		logger = slog.Default()
	}
	return &Packages{cfg: cfg, logger: logger}
}

// Walk loads the configured patterns under the build configuration of version.
func (p *Packages) Walk(ctx context.Context, version symbols.Version) ([]*symbols.ModuleSymbol, error) {
	vc := p.cfg.Version(version)
	if vc == nil {
		return nil, fmt.Errorf("version %s is not configured", version)
	}

	loadCfg := &packages.Config{
		Context: ctx,
		Mode:    LoadMode,
		Dir:     p.cfg.Packages.Dir,
		Env:     append(os.Environ(), vc.Env...),
	}
	if len(vc.Tags) > 0 {
		loadCfg.BuildFlags = []string{"-tags=" + strings.Join(vc.Tags, ",")}
	}

	patterns := p.cfg.Packages.Patterns
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}
	pkgs, err := packages.Load(loadCfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("loading packages: %w", err)
	}

	var errs []string
	packages.Visit(pkgs, nil, func(pkg *packages.Package) {
		for _, err := range pkg.Errors {
			errs = append(errs, fmt.Sprintf("%s: %s", pkg.PkgPath, err.Msg))
		}
	})
	if len(errs) > 0 {
		shown := errs[:min(maxReportedErrors, len(errs))]
		return nil, fmt.Errorf("%d package loading errors: %s", len(errs), strings.Join(shown, "; "))
	}

	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].PkgPath < pkgs[j].PkgPath })
	modules := make([]*symbols.ModuleSymbol, 0, len(pkgs))
	for _, pkg := range pkgs {
		if p.shouldExcludePackage(pkg) || pkg.Types == nil {
			continue
		}
		modules = append(modules, moduleFromPackage(pkg.Types))
	}
	p.logger.Debug("loaded packages", "version", version, "packages", len(modules))
	return modules, nil
}

// shouldExcludePackage checks the package directory and files against the exclusions.
func (p *Packages) shouldExcludePackage(pkg *packages.Package) bool {
	for _, part := range strings.Split(pkg.PkgPath, "/") {
		if p.cfg.IsExcludedDir(part) {
			return true
		}
	}
	if len(pkg.GoFiles) == 0 {
		return false
	}
	for _, file := range pkg.GoFiles {
		if !p.cfg.IsExcludedFile(file) {
			return false
		}
	}
	return true
}

func moduleFromPackage(pkg *types.Package) *symbols.ModuleSymbol {
	mod := &symbols.ModuleSymbol{FullName: pkg.Path()}
	scope := pkg.Scope()
	for _, name := range scope.Names() {
		obj := scope.Lookup(name)
		if !obj.Exported() {
			continue
		}
		switch o := obj.(type) {
		case *types.Func:
			sig, ok := o.Type().(*types.Signature)
			if !ok {
				continue
			}
			mod.Functions = append(mod.Functions, functionFromSignature(pkg.Path()+"."+name, name, sig))
		case *types.TypeName:
			if named, ok := o.Type().(*types.Named); ok && !o.IsAlias() {
				mod.Classes = append(mod.Classes, classFromNamed(pkg.Path(), named))
			}
		}
	}
	return mod
}

func classFromNamed(pkgPath string, named *types.Named) *symbols.ClassSymbol {
	name := named.Obj().Name()
	cls := &symbols.ClassSymbol{
		Name:      name,
		FullName:  pkgPath + "." + name,
		IsGeneric: named.TypeParams().Len() > 0,
	}

	switch u := named.Underlying().(type) {
	case *types.Struct:
		for i := 0; i < u.NumFields(); i++ {
			f := u.Field(i)
			if f.Embedded() {
				cls.SuperClasses = append(cls.SuperClasses, typeString(f.Type()))
				continue
			}
			if f.Exported() {
				cls.Attributes = append(cls.Attributes, symbols.Attribute{Name: f.Name(), Type: typeString(f.Type())})
			}
		}
	case *types.Interface:
		cls.IsProtocol = true
		for i := 0; i < u.NumEmbeddeds(); i++ {
			cls.SuperClasses = append(cls.SuperClasses, typeString(u.EmbeddedType(i)))
		}
		for i := 0; i < u.NumExplicitMethods(); i++ {
			m := u.ExplicitMethod(i)
			if !m.Exported() {
				continue
			}
			cls.Methods = append(cls.Methods, functionFromSignature(cls.FullName+"."+m.Name(), m.Name(), m.Type().(*types.Signature)))
		}
	default:
		cls.SuperClasses = []string{typeString(u)}
	}

	for i := 0; i < named.NumMethods(); i++ {
		m := named.Method(i)
		if !m.Exported() {
			continue
		}
		sig := m.Type().(*types.Signature)
		fn := functionFromSignature(cls.FullName+"."+m.Name(), m.Name(), sig)
		if recv := sig.Recv(); recv != nil {
			if _, ok := recv.Type().(*types.Pointer); ok {
				fn.Decorators = append(fn.Decorators, "pointer_receiver")
			}
		}
		cls.Methods = append(cls.Methods, fn)
	}
	return cls
}

func functionFromSignature(fullName, name string, sig *types.Signature) *symbols.FunctionSymbol {
	fn := &symbols.FunctionSymbol{Name: name, FullName: fullName}
	params := sig.Params()
	for i := 0; i < params.Len(); i++ {
		v := params.At(i)
		kind := symbols.ParamPositionalOrKw
		if sig.Variadic() && i == params.Len()-1 {
			kind = symbols.ParamVarPositional
		}
		fn.Parameters = append(fn.Parameters, symbols.Parameter{
			Name: v.Name(),
			Kind: kind,
			Type: typeString(v.Type()),
		})
	}
	switch results := sig.Results(); results.Len() {
	case 0:
	case 1:
		fn.ReturnType = typeString(results.At(0).Type())
	default:
		parts := make([]string, results.Len())
		for i := range parts {
			parts[i] = typeString(results.At(i).Type())
		}
		fn.ReturnType = "(" + strings.Join(parts, ", ") + ")"
	}
	return fn
}

func typeString(t types.Type) string {
	return types.TypeString(t, nil)
}
