// Package workpool implements the bounded worker pool that backs every
// asynchronous component in tickio.
//
// This package provides the basic building blocks including Pool and
// Handle that let tick-driven code submit blocking work and poll for
// its completion on later ticks without blocking the submitting thread.
package workpool
