// Package shared holds code used across the resolver's packages that does
// not belong to any one layer.
//
// The testutil subpackage provides:
//
//	- a buffered slog handler for asserting on log output
//	- WriteRecordTree and the earthpress fixture for building record trees
//	  under t.TempDir()
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    root := testutil.WriteEarthpress(t)
//	    logger, logs := testutil.NewTestLogger(t)
//	    ...
//	}
//
// Nothing in this package may import a domain package.
package shared
