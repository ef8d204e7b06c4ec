// Command donorctl signs in to the donor platform from a terminal. The
// session token is kept in a file under $DONORCTL_HOME (default ~/.donorctl)
// and expires exactly as it does in the portal.
package main

import (
	"os"

	"github.com/rs/zerolog/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Debug().Err(err).Msg("donorctl failed")
		os.Exit(1)
	}
}
