// Package collector ties a source, the geocoder and snapshot storage into one run.
//
// A run fetches the latest schedule, fills coordinates, groups the records by the
// date they occur on, and reconciles each group with that date's snapshot: the
// primary collector merges into what earlier runs saved, the integrated collector
// overwrites it. A second store can receive the Jongno-gu subset of every batch.
package collector
