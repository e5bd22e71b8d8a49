// Command flowsim analyses timed dataflow graphs: throughput, buffer
// trade-offs, latency, static-periodic scheduling, and full tile/NoC
// mapping, per spec.md §6's CLI surface.
package main

import "os"

func main() {
	os.Exit(run(os.Args[1:]))
}
