// Package strategy runs one batch of work items under interchangeable
// execution strategies and reports how each one did.
//
// Every strategy implements Strategy and produces a Run: the values of the
// items that succeeded plus a Report with timing, latency percentiles and
// failures. Given the same pure unit and input, all strategies produce the
// same multiset of values. Only their timing differs.
//
//	Sequential    items in order on the calling goroutine, fail-fast
//	Threaded      one goroutine per partition, shared address space
//	ProcessPool   one OS process per partition, items exchanged as JSON
//	Async         one cooperative task per item on a single executor
//
// The multi-worker strategies wait for every dispatched item before they
// return, then report the failure with the lowest item index.
package strategy
