// Package logging provides opt-in file-based logging with rotation for the
// deal retrieval engine. When --debug is set, structured logs are written to
// ~/.dealsearch/logs/ for troubleshooting index builds and query behavior.
//
// By default (without --debug), logging stays minimal and goes to stderr only.
package logging
