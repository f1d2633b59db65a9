// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LiReddit Contributors

//go:build tools

// Package main pins test dependencies that are only imported behind build
// tags, so they stay in go.mod.
// See https://go.dev/wiki/Modules#how-can-i-track-tool-dependencies-for-a-module
package main

import (
	// Integration suites (build tag "integration")
	_ "github.com/onsi/ginkgo/v2"
	_ "github.com/onsi/gomega"
	_ "github.com/testcontainers/testcontainers-go"
	_ "github.com/testcontainers/testcontainers-go/modules/postgres"
)
