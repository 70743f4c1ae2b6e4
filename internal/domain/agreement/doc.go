// Package agreement contains the Agreement bounded context.
// It holds the pure parts of the agreement document pipeline: the layout that binds
// field identifiers to positions on a template, the normalized field set of a single
// request, output file naming, and the error taxonomy shared by every stage.
package agreement
