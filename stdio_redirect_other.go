//go:build !unix

package main

import "os"

// redirectStdIO swaps os.Stdout and os.Stderr. Runtime panics still go to the
// original stderr here.
func redirectStdIO(path string) error {
	f, err := openStdIOLog(path)
	if err != nil {
		return err
	}
	os.Stdout = f
	os.Stderr = f
	return nil
}
