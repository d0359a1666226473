// Command ask runs the real ask binary and appends its output to the
// terminal log.
package main

import "github.com/fakeyudi/asklog/cmd"

func main() {
	cmd.ExecuteWrapper()
}
