// FILE: lixenwraith/reflector/internal/scan/scan.go

// Package scan finds plugin types in Go source that has not been compiled into the
// running binary. It type-checks packages with go/packages and reports the exported
// named types that implement a given interface.
package scan

import (
	"context"
	"errors"
	"fmt"
	"go/types"
	"slices"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/lixenwraith/reflector/xlog"
)

var (
	// ErrInterfaceNotFound is returned when the named interface is not in the loaded graph.
	ErrInterfaceNotFound = errors.New("scan: interface not found")
	// ErrNotInterface is returned when the name resolves to a non-interface type.
	ErrNotInterface = errors.New("scan: not an interface")
)

// Candidate is a type that implements the requested interface.
type Candidate struct {
	Package string
	Name    string
	// Pointer is set when only *T implements the interface
	Pointer bool
}

// String returns the qualified name, with a leading "*" for pointer receivers.
func (c Candidate) String() string {
	if c.Pointer {
		return "*" + c.Package + "." + c.Name
	}
	return c.Package + "." + c.Name
}

// Scanner loads packages relative to Dir.
type Scanner struct {
	Dir    string
	Logger xlog.Logger
}

// Implementers loads patterns and lists the exported named types implementing iface,
// given as "import/path.Name". Interfaces themselves are skipped. Results are sorted
// by package and name.
func (s *Scanner) Implementers(ctx context.Context, iface string, patterns ...string) ([]Candidate, error) {
	pkgPath, name, ok := splitQualified(iface)
	if !ok {
		return nil, fmt.Errorf("scan: invalid interface name %q", iface)
	}
	logger := s.Logger
	if logger == nil {
		logger = xlog.Null
	}

	cfg := &packages.Config{
		Context: ctx,
		Dir:     s.Dir,
		Mode:    packages.NeedName | packages.NeedTypes | packages.NeedImports | packages.NeedDeps,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("scan: load: %w", err)
	}

	var loadErrs []error
	target := lookupInterface(pkgs, pkgPath, name, &loadErrs)
	if target == nil && len(loadErrs) == 0 {
		// no pattern imports the interface package
		extra, err := packages.Load(cfg, pkgPath)
		if err != nil {
			return nil, fmt.Errorf("scan: load: %w", err)
		}
		target = lookupInterface(extra, pkgPath, name, &loadErrs)
	}
	if len(loadErrs) > 0 {
		return nil, fmt.Errorf("scan: %w", errors.Join(loadErrs...))
	}
	if target == nil {
		return nil, fmt.Errorf("%w: %s", ErrInterfaceNotFound, iface)
	}
	it, ok := target.Type().Underlying().(*types.Interface)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotInterface, iface)
	}

	var out []Candidate
	for _, pkg := range pkgs {
		if pkg.Types == nil {
			continue
		}
		scope := pkg.Types.Scope()
		for _, n := range scope.Names() {
			tn, ok := scope.Lookup(n).(*types.TypeName)
			if !ok || !tn.Exported() || tn.IsAlias() {
				continue
			}
			named, ok := tn.Type().(*types.Named)
			if !ok || named.TypeParams().Len() > 0 || types.IsInterface(named) {
				continue
			}
			switch {
			case types.Implements(named, it):
				out = append(out, Candidate{Package: pkg.PkgPath, Name: n})
			case types.Implements(types.NewPointer(named), it):
				out = append(out, Candidate{Package: pkg.PkgPath, Name: n, Pointer: true})
			}
		}
		logger.Debug("scan: %s checked against %s", pkg.PkgPath, iface)
	}

	slices.SortFunc(out, func(a, b Candidate) int {
		if c := strings.Compare(a.Package, b.Package); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out, nil
}

// lookupInterface walks the import graph for pkgPath.name and collects load errors.
func lookupInterface(pkgs []*packages.Package, pkgPath, name string, errs *[]error) types.Object {
	var found types.Object
	packages.Visit(pkgs, nil, func(p *packages.Package) {
		for _, e := range p.Errors {
			*errs = append(*errs, e)
		}
		if found == nil && p.PkgPath == pkgPath && p.Types != nil {
			found = p.Types.Scope().Lookup(name)
		}
	})
	return found
}

// splitQualified splits "a/b.Name" at the last dot after the last slash.
func splitQualified(s string) (string, string, bool) {
	slash := strings.LastIndex(s, "/")
	dot := strings.LastIndex(s, ".")
	if dot <= slash || dot == len(s)-1 {
		return "", "", false
	}
	return s[:dot], s[dot+1:], true
}
