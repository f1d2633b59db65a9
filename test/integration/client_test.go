// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LiReddit Contributors

//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"

	. "github.com/onsi/gomega" //nolint:revive // gomega convention

	"github.com/lireddit/lireddit/internal/auth"
	"github.com/lireddit/lireddit/internal/post"
)

// apiClient is a browser-like client with its own cookie jar.
type apiClient struct {
	http *http.Client
	base string
}

func newClient() *apiClient {
	jar, err := cookiejar.New(nil)
	Expect(err).NotTo(HaveOccurred())
	return &apiClient{http: &http.Client{Jar: jar}, base: env.api.URL}
}

// call sends body as JSON and decodes the response into out when non-nil.
func (c *apiClient) call(method, path string, body, out any) int {
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		Expect(err).NotTo(HaveOccurred())
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, c.base+path, rd)
	Expect(err).NotTo(HaveOccurred())
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	Expect(err).NotTo(HaveOccurred())
	defer func() { _ = resp.Body.Close() }()

	if out != nil {
		Expect(json.NewDecoder(resp.Body).Decode(out)).To(Succeed())
	}
	return resp.StatusCode
}

type creds struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c *apiClient) register(username, password string) (auth.Result, int) {
	var res auth.Result
	status := c.call(http.MethodPost, "/register", creds{username, password}, &res)
	return res, status
}

func (c *apiClient) login(username, password string) (auth.Result, int) {
	var res auth.Result
	status := c.call(http.MethodPost, "/login", creds{username, password}, &res)
	return res, status
}

func (c *apiClient) me() *auth.User {
	var out struct {
		User *auth.User `json:"user"`
	}
	Expect(c.call(http.MethodGet, "/me", nil, &out)).To(Equal(http.StatusOK))
	return out.User
}

func (c *apiClient) logout() bool {
	var out struct {
		OK bool `json:"ok"`
	}
	c.call(http.MethodPost, "/logout", nil, &out)
	return out.OK
}

func (c *apiClient) createPost(title string) (*post.Post, int) {
	var p post.Post
	status := c.call(http.MethodPost, "/posts", map[string]string{"title": title}, &p)
	return &p, status
}
