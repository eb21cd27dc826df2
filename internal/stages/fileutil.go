package stages

import (
	"os"
	"strings"
)

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func createFile(path string) (*os.File, error) {
	return os.Create(path)
}

func splitTab(line string) []string {
	return strings.Split(line, "\t")
}
