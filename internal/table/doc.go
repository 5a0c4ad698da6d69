// Package table holds CSV datasets in memory as ordered, named gota
// series and provides the column-name hygiene helpers.
//
// Parsing follows the conventions of the common dataframe CSV readers:
// the first row is the header, blank header cells become "Unnamed: <i>",
// repeated header names are mangled to "name.1", "name.2", and the usual
// missing-value tokens ("", "NA", "NaN", "null", ...) load as missing.
// Each column is typed int, float, bool or string from the values it
// holds. Integer and boolean columns with missing values widen to float
// and string respectively.
//
// Tables are immutable once built. The hygiene helpers return new tables
// and never modify their input:
//
//	t, err := table.LoadPeek("data/raw/Monday.csv", 5000)
//	clean := table.CleanColumnNames(t)
//	report := table.FindSuspiciousColumns(t)
package table
