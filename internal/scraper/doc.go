// Package scraper provides HTTP fetching and HTML parsing for the SPATIC assembly board.
//
// The board at spatic.go.kr publishes a daily "행사 및 집회" post listing the
// assemblies scheduled in central Seoul. The scraper reads the board list (from
// embedded script data or detail links), picks the newest schedule post, and parses
// its detail table into time windows with ordered place lists. Header cells may be
// spaced ("시 간") or missing, place cells may hold several paragraphs and a
// "※행진:" march route line; all of these are folded into one route per window.
package scraper
