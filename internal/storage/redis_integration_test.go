//go:build integration

package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"surety/internal/storage"
	"surety/pkg/platform/sentinel"
	"surety/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *storage.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = storage.NewRedisStore(s.redis.Client, storage.WithNamespace("test:"))
}

func (s *RedisStoreSuite) TearDownSuite() {
	s.redis.Terminate(context.Background())
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	s.Require().NoError(s.store.Put(ctx, "worker:0xa", []byte(`{"state":"bonded"}`)))

	got, err := s.store.Get(ctx, "worker:0xa")
	s.Require().NoError(err)
	s.JSONEq(`{"state":"bonded"}`, string(got))
}

func (s *RedisStoreSuite) TestMissReturnsErrNotFound() {
	_, err := s.store.Get(context.Background(), "worker:0xmissing")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestListIsPrefixScopedAndOrdered() {
	ctx := context.Background()
	s.Require().NoError(s.store.Put(ctx, "job:2", []byte(`2`)))
	s.Require().NoError(s.store.Put(ctx, "job:1", []byte(`1`)))
	s.Require().NoError(s.store.Put(ctx, "worker:1", []byte(`w`)))

	got, err := s.store.List(ctx, "job:")
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal("1", string(got[0]))
	s.Equal("2", string(got[1]))
}
