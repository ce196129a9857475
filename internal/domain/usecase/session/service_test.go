package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/amirhossein-jamali/stock-simulator/internal/domain/error"
	coreport "github.com/amirhossein-jamali/stock-simulator/internal/domain/port/core"
	"github.com/amirhossein-jamali/stock-simulator/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/stock-simulator/internal/infrastructure/adapter/storage/memory"
	clock "github.com/amirhossein-jamali/stock-simulator/internal/infrastructure/adapter/time"
)

func newService() (*Service, *clock.ManualClock) {
	tp := clock.NewManualClock(time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC))
	store := memory.NewStore(logger.NewNoopLogger(), tp)
	return NewSessionService(store.GetSessionRepository(context.Background()), coreport.Hour, tp, logger.NewNoopLogger()), tp
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	token, err := svc.Start(ctx, 42)
	require.NoError(t, err)
	_, err = uuid.Parse(token)
	assert.NoError(t, err, "token is a random uuid")

	identity, err := svc.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), identity.UserID)
	assert.Equal(t, token, identity.Token)

	require.NoError(t, svc.End(ctx, token))
	_, err = svc.Resolve(ctx, token)
	assert.ErrorIs(t, err, errs.ErrSessionNotFound)
}

func TestSessionsAreIndependent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	a, err := svc.Start(ctx, 1)
	require.NoError(t, err)
	b, err := svc.Start(ctx, 2)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	idA, err := svc.Resolve(ctx, a)
	require.NoError(t, err)
	idB, err := svc.Resolve(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), idA.UserID)
	assert.Equal(t, uint64(2), idB.UserID)
}

func TestSessionExpires(t *testing.T) {
	ctx := context.Background()
	svc, tp := newService()

	token, err := svc.Start(ctx, 7)
	require.NoError(t, err)

	other, err := svc.Start(ctx, 8)
	require.NoError(t, err)

	tp.Advance(coreport.Hour)
	_, err = svc.Resolve(ctx, token)
	assert.ErrorIs(t, err, errs.ErrSessionNotFound)

	removed, err := svc.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed, "only the session never resolved is left to purge")

	_, err = svc.Resolve(ctx, other)
	assert.ErrorIs(t, err, errs.ErrSessionNotFound)
}

func TestResolveMissDropsExpiredSession(t *testing.T) {
	ctx := context.Background()
	svc, tp := newService()

	token, err := svc.Start(ctx, 7)
	require.NoError(t, err)

	tp.Advance(2 * coreport.Hour)
	_, err = svc.Resolve(ctx, token)
	require.ErrorIs(t, err, errs.ErrSessionNotFound)

	removed, err := svc.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), removed, "the resolve miss already removed the row")
}

func TestFlash(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()
	token, err := svc.Start(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, svc.Flash(ctx, token, "Bought!"))

	msg, err := svc.TakeFlash(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "Bought!", msg)

	msg, err = svc.TakeFlash(ctx, token)
	require.NoError(t, err)
	assert.Empty(t, msg, "a flash is shown once")

	msg, err = svc.TakeFlash(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, msg)
}

func TestResolveEmptyToken(t *testing.T) {
	svc, _ := newService()
	_, err := svc.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, errs.ErrSessionNotFound)
}
