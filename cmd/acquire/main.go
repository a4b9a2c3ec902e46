package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess    = 0 // Every sample passed
	ExitGateFailed = 1 // The critic flagged one or more samples
	ExitError      = 2 // Configuration or runtime error
)

// QualityGateError indicates that scoring succeeded but the critic judged
// one or more samples low quality.
type QualityGateError struct {
	Message string
}

func (e *QualityGateError) Error() string {
	return e.Message
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var gateErr *QualityGateError
		if errors.As(err, &gateErr) {
			os.Exit(ExitGateFailed)
		}

		os.Exit(ExitError)
	}
}
