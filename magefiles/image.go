//go:build mage

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/magefile/mage/sh"
)

const (
	imageName  = "biomarker-pdftotext:latest"
	dockerfile = "build/pdftotext/Dockerfile"
)

// Image builds the container image used by the container text backend.
// It uses podman when available and falls back to docker.
func Image() error {
	tool := "podman"
	if _, err := sh.Output("podman", "--version"); err != nil {
		tool = "docker"
	}
	if err := sh.RunV(tool, "build", "-t", imageName, "-f", dockerfile, "build/pdftotext"); err != nil {
		return fmt.Errorf("%s build: %w", tool, err)
	}
	fmt.Printf("Built image %s\n", imageName)
	return nil
}
