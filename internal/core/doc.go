// Package core provides schema inference and synthetic data generation.
//
// This package has no transport dependencies. The HTTP server, the datagen
// CLI and the MCP server all go through [Service].
//
// # Schema Model
//
// A [Field] has an id, a name, a [DataType] and an order. A [Schema] keeps
// its fields ordered and re-sequences order to 0..n-1 on every change.
// [ValidateFields] is applied to every field list that enters the system and
// reports the first violation as a [*ValidationError].
//
// # Inference
//
// [InferType] picks a DataType from a column name, falling back to the first
// non-empty sample values. [Parser] applies it to every column of an
// uploaded CSV, XLS or XLSX template.
//
// # Generation
//
// [Generator] synthesizes values per DataType using word lists from
// internal/dataset. Large tables are generated in parallel chunks and
// [GenerationLimiter] bounds how many run at once.
//
// # Error Handling
//
// Errors are typed ([ValidationError], [ParseError], [CollaboratorError])
// and mapped to coded user messages by [MapError]:
//
//   - VAL: malformed fields or requests
//   - FILE: unreadable templates
//   - GEN: generation limits and export formats
//   - TPL: template persistence
//   - AI: schema generation
package core
