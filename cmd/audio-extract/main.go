// Command audio-extract runs the daily AUDIOS-SAC extraction: it selects the
// previous day's agent conversations in Genesys Cloud, submits their
// recordings for bulk download and records jobs, batches and audios.
package main

import (
	"context"
	"os"
	_ "time/tzdata"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
