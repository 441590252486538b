package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"microauth/internal/walletauth/models"
	"microauth/internal/walletauth/store"
	dErrors "microauth/pkg/domain-errors"
	"microauth/pkg/testutil"
)

// backend is the surface every store implementation shares.
type backend interface {
	Load(ctx context.Context) (*models.Snapshot, error)
	SaveRecord(ctx context.Context, wallet string, record models.Record) error
	SaveAdmin(ctx context.Context, admin string) error
	SaveNextContract(ctx context.Context, addr string) error
	Health(ctx context.Context) error
}

// backendSuite holds behavior common to all backends. Embedding suites set
// newStore so every test starts from empty state.
type backendSuite struct {
	suite.Suite
	newStore func() backend
}

func (s *backendSuite) TestLoadEmpty() {
	_, err := s.newStore().Load(context.Background())
	s.Require().Error(err)
	s.True(errors.Is(err, store.ErrNotFound))
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *backendSuite) TestRoundTrip() {
	ctx := context.Background()
	st := s.newStore()

	s.Require().NoError(st.SaveAdmin(ctx, testutil.TestWallets.Admin))
	s.Require().NoError(st.SaveRecord(ctx, testutil.TestWallets.Alice, models.Record{
		Status: models.StatusActive, TrustScore: 85, UpdatedAt: 1700000000,
	}))
	s.Require().NoError(st.SaveRecord(ctx, testutil.TestWallets.Bob, models.Record{
		Status: models.StatusReview, TrustScore: 0, UpdatedAt: 1700000001,
	}))
	s.Require().NoError(st.SaveNextContract(ctx, testutil.TestWallets.Contract))

	snap, err := st.Load(ctx)
	s.Require().NoError(err)
	s.Equal(testutil.TestWallets.Admin, snap.Admin)
	s.Equal(testutil.TestWallets.Contract, snap.NextContract)
	s.Equal(map[string]models.Record{
		testutil.TestWallets.Alice: {Status: models.StatusActive, TrustScore: 85, UpdatedAt: 1700000000},
		testutil.TestWallets.Bob:   {Status: models.StatusReview, TrustScore: 0, UpdatedAt: 1700000001},
	}, snap.Records)
}

func (s *backendSuite) TestOverwrites() {
	ctx := context.Background()
	st := s.newStore()

	s.Require().NoError(st.SaveAdmin(ctx, testutil.TestWallets.Admin))
	s.Require().NoError(st.SaveAdmin(ctx, testutil.TestWallets.NewAdmin))
	s.Require().NoError(st.SaveRecord(ctx, testutil.TestWallets.Alice, models.Record{Status: models.StatusActive, TrustScore: 50, UpdatedAt: 1}))
	s.Require().NoError(st.SaveRecord(ctx, testutil.TestWallets.Alice, models.Record{Status: models.StatusBlocked, TrustScore: 5, UpdatedAt: 2}))

	snap, err := st.Load(ctx)
	s.Require().NoError(err)
	s.Equal(testutil.TestWallets.NewAdmin, snap.Admin)
	s.Empty(snap.NextContract)
	s.Len(snap.Records, 1)
	s.Equal(models.Record{Status: models.StatusBlocked, TrustScore: 5, UpdatedAt: 2}, snap.Records[testutil.TestWallets.Alice])
}

func (s *backendSuite) TestHealth() {
	s.NoError(s.newStore().Health(context.Background()))
}

type InMemorySuite struct {
	backendSuite
}

func TestInMemorySuite(t *testing.T) {
	s := new(InMemorySuite)
	s.newStore = func() backend { return store.NewInMemory() }
	suite.Run(t, s)
}

func (s *InMemorySuite) TestLoadReturnsCopy() {
	ctx := context.Background()
	st := store.NewInMemory()
	s.Require().NoError(st.SaveAdmin(ctx, testutil.TestWallets.Admin))
	s.Require().NoError(st.SaveRecord(ctx, testutil.TestWallets.Alice, models.Record{Status: models.StatusActive}))

	snap, err := st.Load(ctx)
	s.Require().NoError(err)
	delete(snap.Records, testutil.TestWallets.Alice)

	again, err := st.Load(ctx)
	s.Require().NoError(err)
	s.Len(again.Records, 1)
}
