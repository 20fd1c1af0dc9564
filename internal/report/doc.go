// Package report provides inventory rendering and output functionality.
//
// This package contains writers for different output formats:
//   - JSONWriter: The {"website": ...} inventory document for tool integration
//   - MarkdownWriter: Documentation-ready markdown with tables and charts
//   - SimpleWriter: Human-readable text output for terminal display
//
// Design decision: We separate report writing from the data structures
// (which are in the model package) to follow the single responsibility
// principle. This allows adding new output formats without modifying
// the core data structures.
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output. Each writer
// renders both full inventories (Write) and run comparisons (WriteDiff).
package report
