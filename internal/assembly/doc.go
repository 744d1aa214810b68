// Package assembly provides the record model for scheduled public assemblies and the
// reconciliation of scraped batches against persisted ones.
//
// A Record describes one assembly (date, time window, route of locations, headcount,
// coordinates and notes). Records are partitioned by the date the assembly occurs;
// each date is stored as one Batch. Two records describe the same assembly when their
// identity keys match: the date, start and end times, and the canonicalised location
// list.
//
// Reconcile combines an existing batch with a newly scraped one. Under the merge
// policy populated fields are never overwritten and empty fields are filled from the
// newer observation; under the overwrite policy the newer batch simply replaces the
// old one.
package assembly
