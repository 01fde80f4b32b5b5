// io.go reads source code from disk. cobra.ExactArgs(1) guarantees a source path is
// always present, so ReadSource never needs a stdin fallback.

package util

import "os"

// ReadSource reads the entire contents of the file named by opt.Src.
func ReadSource(opt Options) (string, error) {
	b, err := os.ReadFile(opt.Src)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
