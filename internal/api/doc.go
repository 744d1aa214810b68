// Package api serves stored assembly snapshots over HTTP, including the
// Kakao chatbot skill endpoint that answers with today's Jongno assemblies.
package api
