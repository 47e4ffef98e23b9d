// Command cachesim replays memory traces through a two-level cache hierarchy.
package main

import "github.com/sarchlab/cachesim/cachesim/cmd"

func main() {
	cmd.Execute()
}
