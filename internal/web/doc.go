// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LiReddit Contributors

// Package web exposes the auth and post services over HTTP with JSON bodies.
//
// The session token travels in the qid cookie. Register and login respond
// with a result holding either the user or a list of field errors; every
// other endpoint uses plain JSON documents.
package web
