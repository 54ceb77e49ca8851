package file

import "os"

// Exists returns true if a file or directory exists at the specified path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
