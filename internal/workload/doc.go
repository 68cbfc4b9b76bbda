// Package workload provides the CPU-bound and I/O-bound units of work the
// strategies are compared on, and the Registry that worker processes serve.
package workload
