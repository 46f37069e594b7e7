package advisor

import (
	"bufio"
	"bytes"
	"os"
	"strconv"
	"strings"
)

const (
	defaultLoginDefsPath = "/etc/login.defs"
	defaultMinUID        = "1000"
)

// UIDSource yields the minimum UID for regular users on the cluster hosts.
type UIDSource interface {
	MinUID() string
}

// LoginDefs reads UID_MIN from a login.defs style policy file.
type LoginDefs struct {
	Path string
}

// MinUID returns UID_MIN, or "1000" when the file is missing or the value
// is not an integer.
func (l LoginDefs) MinUID() string {
	path := l.Path
	if path == "" {
		path = defaultLoginDefsPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return defaultMinUID
	}
	return parseMinUID(data)
}

func parseMinUID(data []byte) string {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line, _, _ := strings.Cut(scanner.Text(), "#")
		fields := strings.Fields(line)
		if len(fields) < 2 || fields[0] != "UID_MIN" {
			continue
		}
		if _, err := strconv.Atoi(fields[1]); err != nil {
			return defaultMinUID
		}
		return fields[1]
	}
	return defaultMinUID
}

// StaticUID is a fixed UIDSource.
type StaticUID string

// MinUID returns the fixed value.
func (s StaticUID) MinUID() string { return string(s) }
