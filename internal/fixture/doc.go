// Package fixture loads YAML fixture files into a universe of classes and
// members plus a program of call sites for the resolver.
//
// Each file gets its own types.Interner and symbols.Table. Classes are
// registered before any header or member is looked at, so a file may refer
// to classes it declares further down. Method and constructor signatures
// stay pending until resolution first asks for them; a signature that
// names an unknown type is reported then and leaves the callable broken.
//
// Problems inside a document are reported as diagnostics and loading goes
// on with the bad type in place of whatever could not be built. Only I/O
// and YAML syntax errors are returned as errors.
package fixture
