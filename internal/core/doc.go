// Package core provides the batch clone logic for orgclone.
//
// This package contains the orchestration separated from UI concerns.
// Functions here never print on their own, except the Print* helpers that
// take an explicit writer.
//
// # Batch Clone
//
// [Orchestrator.Run] processes a list of repository URLs in order:
//
//  1. Resolve the organization from the URL path; URLs without one are skipped
//  2. Ensure <root>/<organization> exists as a directory
//  3. Clone through the injected [CloneTransport] inside that folder
//
// Every URL yields exactly one [Outcome]. A failure is recorded and the batch
// moves on to the next URL.
//
// # Reporting
//
// Outcomes are handed to a [Reporter] as soon as they are known. The
// [LineReporter] prints one line per URL; the cli package drives its progress
// view through the same interface.
package core
