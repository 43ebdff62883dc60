// Package core provides the business logic for CSV data quality checks and
// cleaning.
//
// The package has no transport dependencies. Web handlers, tests or a CLI
// can all drive it directly.
//
// # Architecture
//
//   - Table: typed in-memory columns loaded by [ReadCSV].
//   - Checks: pure functions ([MissingValues], [Duplicates], [Outliers],
//     [MixedTypes], [BasicValidation]) that never modify their input.
//   - Cleaner: [Clean] and [Apply] run a fixed pipeline of option-gated
//     stages over a copy of the table.
//   - Service: session layer storing uploaded and cleaned datasets by id.
//
// # Loading
//
// Cells are typed per column the way a dataframe reader does it:
//
//	Name,Age,Email
//	Al ,-5,a@b.com
//	Bo,,bad
//
// loads Name as text (whitespace kept), Age as integers with one null and
// Email as text. A column whose cells disagree (for example "1" and "abc")
// keeps each cell's own kind and is reported by [MixedTypes].
//
// # Cleaning
//
// Stages always run in this order, each only when its option is set:
//
//  1. drop_duplicates
//  2. fill_numeric (median)
//  3. fill_categorical (mode, ties to the lowest value)
//  4. trim_whitespace
//  5. standardize_cols
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages using [MapError].
// Each category has a code for support reference, for example FILE002 for
// malformed CSV and DS001 for an unknown dataset.
package core
