// Package catalog turns a raw music-catalog table into the working set of
// typed track records the chart is drawn from.
//
// # Normalization
//
// Each row of the source table arrives as a [RawRecord] (column name to
// string). [Normalize] coerces it into a [Record]:
//
//   - numeric columns are parsed as floats; anything unparseable becomes NaN
//     and is reported as a [FieldAnomaly]
//   - the explicit flag is true only for the literal "TRUE"
//   - the release date is parsed and split into year and month, from which
//     the jittered x position year + month/12 - 0.5 is derived
//
// Anomalies are never fatal. A row whose fields failed to coerce simply
// fails the working-set invariant and is dropped without a per-row warning.
//
// # Working set
//
// [BuildWorkingSet] keeps the records satisfying
//
//	0 < popularity <= 100, followers > 0, duration > 0, year >= 2021
//
// sorts them by popularity (descending, stable on source order) and keeps the
// first 300. The result is fixed for the lifetime of the chart.
//
// A missing or malformed table is a DATA_LOAD error (see pkg/errors); no
// partial working set is ever returned in that case.
package catalog
