// Package storage provides CSV persistence for dated assembly snapshots.
//
// Each target date is stored in its own file named <prefix>_<YYYY-MM-DD>.csv, keyed by
// the date the assemblies occur rather than the date they were collected. Files carry
// a fixed header (year, month, day, start_time, end_time, locations, headcount,
// latitudes, longitudes, notes); list-valued columns hold JSON arrays. Snapshots
// written by earlier collectors with Korean headers are read transparently.
//
// Writes are atomic: a snapshot is written to a temporary file in the same directory
// and renamed over the previous one.
package storage
