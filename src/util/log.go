// log.go configures structured stage-boundary logging using logrus, gated on
// opt.Verbose.

package util

import (
	"os"

	log "github.com/sirupsen/logrus"
)

// ConfigureLogging sets the package-wide logrus level and formatter based on the
// verbosity requested on the command line.
func ConfigureLogging(verbose bool) {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{
		DisableTimestamp: true,
	})
	if verbose {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.WarnLevel)
	}
}

// Stage logs entry into a pipeline stage at debug level.
func Stage(name string) {
	log.Debugf("stage: %s", name)
}
