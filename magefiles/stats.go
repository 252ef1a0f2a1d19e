//go:build mage

package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Stats prints Go lines of code per package root and the number of types
// declared by the example manifests, as one JSON line.
func Stats() error {
	loc := make(map[string]int)
	err := filepath.WalkDir(".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			switch d.Name() {
			case "vendor", ".git", binaryDir, "magefiles", "_examples":
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") {
			return nil
		}
		n, err := countLines(path)
		if err != nil {
			return nil
		}
		key := "go_loc_" + strings.SplitN(filepath.ToSlash(path), "/", 2)[0]
		if strings.HasSuffix(path, "_test.go") {
			key += "_test"
		}
		loc[key] += n
		loc["go_loc"] += n
		return nil
	})
	if err != nil {
		return err
	}

	manifests, err := filepath.Glob("examples/*.yaml")
	if err != nil {
		return err
	}
	sort.Strings(manifests)
	for _, path := range manifests {
		n, err := countManifestTypes(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		loc["manifest_types"] += n
	}

	line, err := json.Marshal(loc)
	if err != nil {
		return err
	}
	fmt.Println(string(line))
	return nil
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		count++
	}
	return count, scanner.Err()
}

// countManifestTypes decodes only the type names of a manifest.
func countManifestTypes(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var doc struct {
		Types []struct {
			Name string `yaml:"name"`
		} `yaml:"types"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return 0, err
	}
	return len(doc.Types), nil
}
