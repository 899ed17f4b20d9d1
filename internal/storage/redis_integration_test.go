// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//go:build integration

package storage_test

import (
	"context"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/holomush/authclient/internal/storage"
)

// setupRedisContainer starts a Redis container and returns its URL.
func setupRedisContainer(ctx context.Context) (string, func(), error) {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return "", nil, err
	}

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		_ = container.Terminate(ctx)
		return "", nil, err
	}

	cleanup := func() {
		_ = container.Terminate(ctx)
	}
	return fmt.Sprintf("redis://%s/0", endpoint), cleanup, nil
}

var _ = Describe("Redis store", func() {
	var (
		ctx     context.Context
		store   storage.Store
		cleanup func()
	)

	BeforeEach(func() {
		ctx = context.Background()
		url, stop, err := setupRedisContainer(ctx)
		Expect(err).NotTo(HaveOccurred())
		cleanup = stop

		store, err = storage.Open(ctx, storage.Config{
			Backend:     storage.BackendRedis,
			RedisURL:    url,
			RedisPrefix: "it:",
		})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if store != nil {
			_ = store.Close()
		}
		cleanup()
	})

	Describe("session keys", func() {
		It("round-trips token and user independently", func() {
			Expect(store.Set(ctx, "token", "abc")).To(Succeed())
			Expect(store.Set(ctx, "user", `{"role":"admin"}`)).To(Succeed())

			token, ok, err := store.Get(ctx, "token")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(token).To(Equal("abc"))

			Expect(store.Remove(ctx, "token")).To(Succeed())
			_, ok, err = store.Get(ctx, "token")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())

			user, ok, err := store.Get(ctx, "user")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(user).To(MatchJSON(`{"role":"admin"}`))
		})

		It("treats removing a missing key as success", func() {
			Expect(store.Remove(ctx, "never-set")).To(Succeed())
		})
	})
})
