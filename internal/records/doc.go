// Package records reads namespaces and records from the on-disk tree
//
//	{root}/{namespace}/_namespace.json
//	{root}/{namespace}/{slug}.json
//
// Every call reads storage; nothing is cached. A missing file, an empty
// record and a path segment that could escape the namespace directory are
// all reported as ErrNotFound. A descriptor is only ErrNotFound when it is
// missing.
package records
