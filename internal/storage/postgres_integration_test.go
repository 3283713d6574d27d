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

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *storage.SQLStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	store, err := storage.OpenPostgres(context.Background(), s.pg.DSN)
	s.Require().NoError(err)
	s.store = store
}

func (s *PostgresStoreSuite) TearDownSuite() {
	_ = s.store.Close()
	s.pg.Terminate(context.Background())
}

func (s *PostgresStoreSuite) TestUpsertAndList() {
	ctx := context.Background()
	s.Require().NoError(s.store.Put(ctx, "identity:0xa", []byte(`{"status":"pending"}`)))
	s.Require().NoError(s.store.Put(ctx, "identity:0xa", []byte(`{"status":"verified"}`)))
	s.Require().NoError(s.store.Put(ctx, "identity:0xb", []byte(`{"status":"pending"}`)))

	got, err := s.store.Get(ctx, "identity:0xa")
	s.Require().NoError(err)
	s.JSONEq(`{"status":"verified"}`, string(got))

	all, err := s.store.List(ctx, "identity:")
	s.Require().NoError(err)
	s.Len(all, 2)

	_, err = s.store.Get(ctx, "identity:0xmissing")
	s.ErrorIs(err, sentinel.ErrNotFound)
}
