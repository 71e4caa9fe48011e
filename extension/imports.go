package extension

// Import associates a short package alias with its full import path so that
// catalog-declared type names can be resolved to registered Go types.
type Import struct {
	Package string
	PkgPath string
}

// Imports represents a collection of imports
type Imports []*Import

// HasPkgPath reports whether the collection already carries the package path.
func (i Imports) HasPkgPath(pkgPath string) bool {
	for _, item := range i {
		if item.PkgPath == pkgPath {
			return true
		}
	}
	return false
}

// PkgPath returns the package path registered for the alias, or "".
func (i Imports) PkgPath(pkg string) string {
	for _, item := range i {
		if item.Package == pkg {
			return item.PkgPath
		}
	}
	return ""
}
