//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main provides build targets for the compose module using Mage.
//
// Usage:
//
//	mage build       Compile composectl to bin/
//	mage test:all    Run all tests
//	mage test:unit   Run the library tests only
//	mage test:cover  Run all tests with a coverage profile
//	mage lint        Run golangci-lint
//	mage demo        Describe and call the example manifest
//	mage clean       Remove build artifacts
//	mage install     Install composectl to GOPATH/bin
//	mage stats       Print Go LOC and manifest counts as JSON
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo        = "go"
	binaryName   = "composectl"
	binaryDir    = "bin"
	cmdDir       = "./cmd/composectl"
	demoManifest = "examples/widgets.yaml"
)

// Build compiles the composectl binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-v", "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}

// Demo builds composectl and runs it against the example manifest with a
// throwaway config and data directory.
func Demo() error {
	mg.Deps(Build)
	dir, err := os.MkdirTemp("", "composectl-demo-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	bin := filepath.Join(binaryDir, binaryName)
	global := []string{"--config-dir", filepath.Join(dir, "config"), "--data-dir", filepath.Join(dir, "data")}
	steps := [][]string{
		{"describe", "-f", demoManifest},
		{"call", "-f", demoManifest, "SpanishButton", "render"},
		{"history"},
	}
	for _, step := range steps {
		if err := sh.RunV(bin, append(global, step...)...); err != nil {
			return err
		}
	}
	return nil
}
