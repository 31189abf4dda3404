package services_test

import (
	"context"
	"testing"
	"time"

	"bidding-service/models"
	"bidding-service/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOpenLoads_PriceTracksLowestBid(t *testing.T) {
	env := newTestEnv(t)
	env.seedOwner(t, "Ravi", phoneA, models.VerificationApproved)
	order := env.seedOrder(t, 45000)
	env.launch(t, order, 30, 40000)
	env.placeBid(t, phoneA, order, 38000)

	load, ok := env.findLoad(t, order)
	require.True(t, ok)
	assert.Equal(t, "₹38000", load.Price)
	assert.Equal(t, int64(38000), load.Amount)
	assert.Equal(t, "Delhi, DEL", load.From)
	assert.Equal(t, "Mumbai, MAH", load.To)
	assert.Equal(t, "Steel", load.Type)
	assert.Equal(t, float64(18), load.Weight)
	assert.Equal(t, int64(1), load.OpenBidCount)
	assert.Equal(t, models.SessionStatusLive, load.SessionStatus)
	assert.False(t, load.Expired)
}

func TestGetOpenLoads_FallbackPrices(t *testing.T) {
	env := newTestEnv(t)
	noSession := env.seedOrder(t, 45000)
	noBids := env.seedOrder(t, 30000)
	env.launch(t, noBids, 30, 28000)

	load, ok := env.findLoad(t, noSession)
	require.True(t, ok)
	assert.Equal(t, "₹45000", load.Price)
	assert.Nil(t, load.SessionID)

	load, ok = env.findLoad(t, noBids)
	require.True(t, ok)
	assert.Equal(t, "₹28000", load.Price)
	assert.Equal(t, int64(0), load.OpenBidCount)
}

func TestGetOpenLoads_StopAndRepostOrder(t *testing.T) {
	env := newTestEnv(t)
	env.seedOwner(t, "Ravi", phoneA, models.VerificationApproved)
	order := env.seedOrder(t, 45000)
	env.placeBid(t, phoneA, order, 41000)

	_, err := env.orders.StopBidding(context.Background(), order.ID)
	require.NoError(t, err)
	_, listed := env.findLoad(t, order)
	assert.False(t, listed)

	_, err = env.orders.RepostOrder(context.Background(), order.ID)
	require.NoError(t, err)
	load, listed := env.findLoad(t, order)
	require.True(t, listed)
	assert.Equal(t, models.SessionStatusLive, load.SessionStatus)

	bids, err := env.bids.ListBids(context.Background(), models.BidFilter{OrderID: order.ID})
	require.NoError(t, err)
	assert.Len(t, bids, 1)
}

func TestGetOpenLoads_AcceptedOrderHidden(t *testing.T) {
	env := newTestEnv(t)
	env.seedOwner(t, "Ravi", phoneA, models.VerificationApproved)
	order := env.seedOrder(t, 45000)
	bid := env.placeBid(t, phoneA, order, 41000)

	_, err := env.acceptance.AcceptBid(context.Background(), &models.AcceptBidRequest{
		OrderID: order.ID.String(),
		BidID:   bid.ID.String(),
	})
	require.NoError(t, err)

	_, listed := env.findLoad(t, order)
	assert.False(t, listed)
}

func TestGetOpenLoads_ExpiryFlaggedByDefault(t *testing.T) {
	env := newTestEnv(t)
	order := env.seedOrder(t, 45000)
	env.launch(t, order, 30, 40000)
	env.advance(45 * time.Minute)

	load, ok := env.findLoad(t, order)
	require.True(t, ok)
	assert.True(t, load.Expired)
	assert.Equal(t, models.SessionStatusLive, load.SessionStatus)
}

func TestGetOpenLoads_ExpiredOmittedWhenEnforced(t *testing.T) {
	env := newTestEnv(t, enforceExpiry)
	expiring := env.seedOrder(t, 45000)
	fresh := env.seedOrder(t, 30000)
	env.launch(t, expiring, 30, 40000)
	env.launch(t, fresh, 120, 29000)
	env.advance(45 * time.Minute)

	_, listed := env.findLoad(t, expiring)
	assert.False(t, listed)
	_, listed = env.findLoad(t, fresh)
	assert.True(t, listed)
}

func TestGetOpenLoads_Empty(t *testing.T) {
	env := newTestEnv(t)

	loads, err := env.queries.GetOpenLoads(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, loads)
	assert.Empty(t, loads)
}

func TestBoard_GroupsOrdersAndSessions(t *testing.T) {
	env := newTestEnv(t)
	env.seedOwner(t, "Ravi", phoneA, models.VerificationApproved)
	available := env.seedOrder(t, 45000)
	live := env.seedOrder(t, 30000)
	ended := env.seedOrder(t, 20000)
	env.launch(t, live, 30, 29000)
	endedSession := env.launch(t, ended, 30, 19000)
	env.placeBid(t, phoneA, ended, 18000)
	_, err := env.sessions.Stop(context.Background(), endedSession.ID)
	require.NoError(t, err)

	board, err := env.queries.Board(context.Background())
	require.NoError(t, err)

	require.Len(t, board.Available, 1)
	assert.Equal(t, available.ID, board.Available[0].ID)
	require.Len(t, board.Live, 1)
	assert.Equal(t, live.ID, board.Live[0].Order.ID)
	assert.Equal(t, int64(29000), board.Live[0].Lowest)
	require.Len(t, board.Ended, 1)
	assert.Equal(t, int64(18000), board.Ended[0].Lowest)
	assert.Equal(t, int64(1), board.Ended[0].OpenBidCount)
}

func TestBoard_OpenBidCountExcludesAcceptedBid(t *testing.T) {
	env := newTestEnv(t)
	env.seedOwner(t, "Ravi", phoneA, models.VerificationApproved)
	env.seedOwner(t, "Sunil", phoneB, models.VerificationApproved)
	order := env.seedOrder(t, 45000)
	env.launch(t, order, 30, 40000)
	winner := env.placeBid(t, phoneA, order, 37000)
	env.placeBid(t, phoneB, order, 38000)
	_, err := env.acceptance.AcceptBid(context.Background(), &models.AcceptBidRequest{
		OrderID: order.ID.String(),
		BidID:   winner.ID.String(),
	})
	require.NoError(t, err)

	board, err := env.queries.Board(context.Background())
	require.NoError(t, err)

	require.Len(t, board.Live, 1)
	assert.Equal(t, int64(1), board.Live[0].OpenBidCount)
	assert.Equal(t, int64(38000), board.Live[0].Lowest)
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "₹38000", services.FormatPrice(38000))
	assert.Equal(t, "₹0", services.FormatPrice(0))
}
