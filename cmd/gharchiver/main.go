package main

import (
	"os"
)

// Process exit codes
const (
	ExitSuccess        = 0
	ExitFailure        = 1
	ExitPartialSuccess = 2
)

func main() {
	os.Exit(Execute())
}
