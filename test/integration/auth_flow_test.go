// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LiReddit Contributors

//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/lireddit/lireddit/internal/auth"
)

// uniqueName returns a username no other test uses.
func uniqueName(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, ulid.Make().String()[20:])
}

var _ = Describe("Account lifecycle", func() {
	It("registers, logs in, resolves me and logs out", func() {
		c := newClient()
		name := uniqueName("Alice")

		reg, status := c.register(name, "correct-horse")
		Expect(status).To(Equal(http.StatusOK))
		Expect(reg.Errors).To(BeEmpty())
		Expect(reg.User.Username).To(Equal(auth.NormalizeUsername(name)))

		By("not starting a session on register")
		Expect(c.me()).To(BeNil())

		By("logging in with different case")
		res, status := c.login(auth.NormalizeUsername(name), "correct-horse")
		Expect(status).To(Equal(http.StatusOK))
		Expect(res.User.ID).To(Equal(reg.User.ID))

		me := c.me()
		Expect(me).NotTo(BeNil())
		Expect(me.ID).To(Equal(reg.User.ID))

		By("logging out")
		Expect(c.logout()).To(BeTrue())
		Expect(c.me()).To(BeNil())
	})

	It("rejects a duplicate username regardless of case", func() {
		name := uniqueName("dup")
		_, status := newClient().register(name, "correct-horse")
		Expect(status).To(Equal(http.StatusOK))

		res, status := newClient().register(strings.ToUpper(name), "another-pass")
		Expect(status).To(Equal(http.StatusUnprocessableEntity))
		Expect(res.Errors).To(ConsistOf(auth.FieldError{Field: auth.FieldUsername, Message: auth.MsgUsernameTaken}))
	})

	It("reports unknown users and wrong passwords without a session", func() {
		c := newClient()
		name := uniqueName("carol")
		_, status := c.register(name, "correct-horse")
		Expect(status).To(Equal(http.StatusOK))

		res, _ := c.login(uniqueName("nobody"), "correct-horse")
		Expect(res.Errors).To(ConsistOf(auth.FieldError{Field: auth.FieldUsername, Message: auth.MsgUsernameNotFound}))

		res, _ = c.login(name, "wrong-horse")
		Expect(res.Errors).To(ConsistOf(auth.FieldError{Field: auth.FieldPassword, Message: auth.MsgIncorrectPassword}))

		Expect(c.me()).To(BeNil())
	})

	It("creates exactly one account under concurrent registration", func() {
		name := uniqueName("race")
		const n = 6

		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			ok       int
			rejected int
		)
		for range n {
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				_, status := newClient().register(name, "correct-horse")
				mu.Lock()
				defer mu.Unlock()
				switch status {
				case http.StatusOK:
					ok++
				case http.StatusUnprocessableEntity:
					rejected++
				}
			}()
		}
		wg.Wait()

		Expect(ok).To(Equal(1))
		Expect(rejected).To(Equal(n - 1))

		var count int
		Expect(env.postgres.Pool.QueryRow(env.ctx,
			`SELECT count(*) FROM users WHERE username = $1`, auth.NormalizeUsername(name)).Scan(&count)).To(Succeed())
		Expect(count).To(Equal(1))
	})
})

var _ = Describe("Posts", func() {
	var owner, other *apiClient

	BeforeEach(func() {
		owner, other = newClient(), newClient()
		for _, c := range []*apiClient{owner, other} {
			name := uniqueName("poster")
			_, status := c.register(name, "correct-horse")
			Expect(status).To(Equal(http.StatusOK))
			_, status = c.login(name, "correct-horse")
			Expect(status).To(Equal(http.StatusOK))
		}
	})

	It("requires a session to create", func() {
		_, status := newClient().createPost("anonymous")
		Expect(status).To(Equal(http.StatusUnauthorized))
	})

	It("lets only the owner retitle or delete", func() {
		p, status := owner.createPost("first post")
		Expect(status).To(Equal(http.StatusCreated))

		Expect(other.call(http.MethodPatch, "/posts/"+p.ID.String(), map[string]string{"title": "hijacked"}, nil)).
			To(Equal(http.StatusNotFound))

		var updated struct {
			Title string `json:"title"`
		}
		Expect(owner.call(http.MethodPatch, "/posts/"+p.ID.String(), map[string]string{"title": "renamed"}, &updated)).
			To(Equal(http.StatusOK))
		Expect(updated.Title).To(Equal("renamed"))

		var del struct {
			Deleted bool `json:"deleted"`
		}
		Expect(other.call(http.MethodDelete, "/posts/"+p.ID.String(), nil, &del)).To(Equal(http.StatusOK))
		Expect(del.Deleted).To(BeFalse())

		Expect(owner.call(http.MethodDelete, "/posts/"+p.ID.String(), nil, &del)).To(Equal(http.StatusOK))
		Expect(del.Deleted).To(BeTrue())

		Expect(owner.call(http.MethodGet, "/posts/"+p.ID.String(), nil, nil)).To(Equal(http.StatusNotFound))
	})

	It("lists newest first", func() {
		first, _ := owner.createPost("older")
		second, _ := owner.createPost("newer")

		var out struct {
			Posts []struct {
				ID ulid.ULID `json:"id"`
			} `json:"posts"`
		}
		Expect(newClient().call(http.MethodGet, "/posts", nil, &out)).To(Equal(http.StatusOK))

		var ids []ulid.ULID
		for _, p := range out.Posts {
			ids = append(ids, p.ID)
		}
		Expect(ids).To(ContainElements(first.ID, second.ID))
		Expect(indexOf(ids, second.ID)).To(BeNumerically("<", indexOf(ids, first.ID)))
	})
})

func indexOf(ids []ulid.ULID, id ulid.ULID) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
