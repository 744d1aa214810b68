// Package cli implements the command-line interface for protest-crawler.
//
// The cli package provides the Cobra-based CLI: collect and integrated run one
// scrape and reconcile it into the dated snapshots, show and list read snapshots
// back (text, JSON or iCalendar), and serve starts the chatbot API. It wires the
// scraper, smpa, geocode, collector, storage and api packages together.
package cli
