// Package pagination provides page state, page metadata and the pagination controller
// shared by every grid in recongrid.
//
// This package contains:
//   - State: the zero-based page index and page size a grid is showing
//   - Controller: owns State itself (uncontrolled) or passes reads and writes
//     through to a parent-supplied Store (controlled); both expose one shape
//   - Metadata: server-supplied page metadata (1-based page, totals)
//   - Params: CLI flag parsing and validation for page-based listing
//
// Changing the page size always resets the page index to 0, and the index is
// clamped into range whenever the page count shrinks below it.
package pagination
