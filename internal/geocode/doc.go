// Package geocode resolves assembly place names to WGS84 coordinates.
//
// The VWorld client tries a list of query variants per place (exit numbers
// normalised, police boxes expanded, district and city prefixes added) against the
// place search API and then the road and parcel address APIs, keeping only points
// inside the configured area. Enrich fills a record's latitude and longitude lists
// aligned with its locations; a place that cannot be resolved gets a null entry.
package geocode
