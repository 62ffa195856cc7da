//go:build mage

package main

import (
	"fmt"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Vocab groups targets that drive the built CLI against local vocabularies.
type Vocab mg.Namespace

// vocabDir holds Turtle files picked up by vocab:importAll.
const vocabDir = "vocabularies"

// ImportAll imports every .ttl file in vocabularies/ and validates the result.
func (Vocab) ImportAll() error {
	mg.Deps(Build)

	files, err := filepath.Glob(filepath.Join(vocabDir, "*.ttl"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Printf("No .ttl files in %s/.\n", vocabDir)
		return nil
	}
	args := append([]string{"import", "--validate"}, files...)
	return sh.RunV(binPath(), args...)
}

// Validate runs every validation rule against the store.
func (Vocab) Validate() error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "validate")
}

// Export writes the whole store to output/vocabulary.ttl.
func (Vocab) Export() error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "export", "--out", filepath.Join("output", "vocabulary.ttl"))
}

// Refresh rebuilds the hierarchy index and prints store statistics.
func (Vocab) Refresh() error {
	mg.Deps(Build)
	if err := sh.RunV(binPath(), "refresh"); err != nil {
		return err
	}
	return sh.RunV(binPath(), "stats")
}
