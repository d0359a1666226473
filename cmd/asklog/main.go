// Command asklog installs, inspects and maintains terminal session logging
// for ask.
package main

import "github.com/fakeyudi/asklog/cmd"

func main() {
	cmd.Execute()
}
