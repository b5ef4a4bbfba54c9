// Command cqlbrowser browses and edits Cassandra tables from the terminal.
package main

import (
	"os"
)

func main() {
	os.Exit(Execute())
}
