// Command flowpace runs the traffic generation scenario and records the
// throughput, drop and congestion window traces.
package main

import "github.com/flowpace/flowpace/flowpace/cmd"

func main() {
	cmd.Execute()
}
