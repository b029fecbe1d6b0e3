// Package main hosts the imgutil CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once, then hands each batch
// command (rename, resize, convert) to a shared runner that discovers source
// files, locks the destination, drives the bounded-concurrency processor, and
// renders the outcome. Journal inspection, configuration scaffolding, and
// environment status live alongside.
//
// Keep this package lean: add new behaviour to the internal packages first,
// then surface it through commands or flags here.
package main
