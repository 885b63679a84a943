//go:build mage

// Package main provides build targets for stackyard using Mage.
//
// Usage:
//
//	mage build      Compile the stackyard binary to bin/
//	mage test       Run all tests
//	mage race       Run all tests with the race detector
//	mage lint       Run go vet and golangci-lint
//	mage sim        Build, then run a short headless session without the ledger
//	mage clean      Remove build artifacts
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binaryName = "stackyard"
	binaryDir  = "bin"
	cmdDir     = "./cmd/stackyard"
)

// Build compiles the stackyard binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV("go", "build", "-v", "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Test runs all tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Race runs all tests with -race.
func Race() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Lint runs go vet, then golangci-lint when it is installed.
func Lint() error {
	if err := sh.RunV("go", "vet", "./..."); err != nil {
		return err
	}
	if _, err := sh.Output("golangci-lint", "version"); err != nil {
		fmt.Println("golangci-lint not found, skipping")
		return nil
	}
	return sh.RunV("golangci-lint", "run", "./...")
}

// Sim builds and runs a headless session for 3000 ticks.
func Sim() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binaryDir, binaryName), "sim", "--no-ledger", "--ticks", "3000")
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	fmt.Println("Cleaned", binaryDir+"/")
	return nil
}
