package utils

import "os"

// TruncateAt truncates the file at the given offset and syncs the result.
func TruncateAt(path string, offset int64) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Truncate(offset); err != nil {
		return err
	}
	return f.Sync()
}

// PathExists indicates if the given path exists or not (works for both
// files and directories)
func PathExists(filepath string) bool {
	_, err := os.Stat(filepath)
	return err == nil
}
