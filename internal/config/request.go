package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"stack-advisor/internal/model"
)

// requestExtensions are the file types recognised as request payloads.
var requestExtensions = []string{".yaml", ".yml", ".json"}

// LoadRequest reads an advisor request from a YAML or JSON file and
// validates it.
func LoadRequest(requestPath string) (*model.Request, error) {
	if requestPath == "" {
		return nil, fmt.Errorf("request file path is required")
	}

	if _, err := os.Stat(requestPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("request file not found: %s", requestPath)
	}

	data, err := os.ReadFile(requestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read request file: %w", err)
	}

	req, err := ParseRequest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", requestPath, err)
	}
	return req, nil
}

// ParseRequest decodes and validates a request payload. Payloads starting
// with "{" are decoded as JSON, anything else as YAML.
func ParseRequest(data []byte) (*model.Request, error) {
	var req model.Request
	unmarshal := yaml.Unmarshal
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		unmarshal = json.Unmarshal
	}
	if err := unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}

	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	return &req, nil
}

// ListRequestFiles returns the request files of a directory in name order.
func ListRequestFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read request directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		for _, want := range requestExtensions {
			if ext == want {
				files = append(files, filepath.Join(dir, e.Name()))
				break
			}
		}
	}
	sort.Strings(files)

	if len(files) == 0 {
		return nil, fmt.Errorf("no request files found in directory: %s", dir)
	}
	return files, nil
}
