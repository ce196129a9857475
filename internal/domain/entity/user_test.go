package entity

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/amirhossein-jamali/stock-simulator/internal/domain/error"
	coremocks "github.com/amirhossein-jamali/stock-simulator/mocks/port/core"
)

func TestNewUser(t *testing.T) {
	fixedTime := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
	mockTime := coremocks.NewMockTimeProvider(t)
	mockTime.EXPECT().Now().Return(fixedTime).Maybe()

	t.Run("Valid user creation", func(t *testing.T) {
		user, err := NewUser("alice", "hash", decimal.NewFromInt(10000), mockTime)

		require.NoError(t, err)
		assert.Zero(t, user.ID)
		assert.Equal(t, "alice", user.Username)
		assert.True(t, user.Cash().Equal(decimal.NewFromInt(10000)))
		assert.Equal(t, fixedTime, user.CreatedAt)
		assert.Equal(t, fixedTime, user.UpdatedAt)
	})

	t.Run("Invalid input", func(t *testing.T) {
		testCases := []struct {
			name     string
			username string
			hash     string
			cash     decimal.Decimal
		}{
			{"Empty username", "  ", "hash", decimal.Zero},
			{"Empty hash", "bob", "", decimal.Zero},
			{"Negative cash", "bob", "hash", decimal.NewFromInt(-1)},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				user, err := NewUser(tc.username, tc.hash, tc.cash, mockTime)
				assert.ErrorIs(t, err, errs.ErrValidation)
				assert.Nil(t, user)
			})
		}
	})
}

func TestUserDebit(t *testing.T) {
	initialTime := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
	updateTime := time.Date(2023, 1, 1, 13, 0, 0, 0, time.UTC)

	t.Run("Sufficient cash", func(t *testing.T) {
		mockTime := coremocks.NewMockTimeProvider(t)
		mockTime.EXPECT().Now().Return(updateTime).Once()

		user := RestoreUser(1, "alice", "hash", decimal.NewFromInt(10000), initialTime, initialTime)
		err := user.Debit(decimal.NewFromInt(1000), mockTime)

		require.NoError(t, err)
		assert.Equal(t, "9000", user.Cash().String())
		assert.Equal(t, updateTime, user.UpdatedAt)
	})

	t.Run("Exact cash", func(t *testing.T) {
		mockTime := coremocks.NewMockTimeProvider(t)
		mockTime.EXPECT().Now().Return(updateTime).Once()

		user := RestoreUser(1, "alice", "hash", decimal.RequireFromString("100.50"), initialTime, initialTime)
		err := user.Debit(decimal.RequireFromString("100.50"), mockTime)

		require.NoError(t, err)
		assert.True(t, user.Cash().IsZero())
	})

	t.Run("Not enough cash", func(t *testing.T) {
		mockTime := coremocks.NewMockTimeProvider(t)

		user := RestoreUser(1, "alice", "hash", decimal.NewFromInt(50), initialTime, initialTime)
		err := user.Debit(decimal.NewFromInt(100), mockTime)

		assert.ErrorIs(t, err, errs.ErrInsufficientResource)
		assert.Equal(t, ReasonNotEnoughCash, errs.PublicMessage(err))
		assert.Equal(t, "50", user.Cash().String())
		assert.Equal(t, initialTime, user.UpdatedAt)
	})
}

func TestUserCredit(t *testing.T) {
	initialTime := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
	updateTime := time.Date(2023, 1, 1, 13, 0, 0, 0, time.UTC)

	mockTime := coremocks.NewMockTimeProvider(t)
	mockTime.EXPECT().Now().Return(updateTime).Once()

	user := RestoreUser(1, "alice", "hash", decimal.NewFromInt(9000), initialTime, initialTime)
	user.Credit(decimal.NewFromInt(1100), mockTime)

	assert.Equal(t, "10100", user.Cash().String())
	assert.Equal(t, updateTime, user.UpdatedAt)
}

func TestUserCanAfford(t *testing.T) {
	user := RestoreUser(1, "alice", "hash", decimal.NewFromInt(100), time.Time{}, time.Time{})

	assert.True(t, user.CanAfford(decimal.NewFromInt(50)))
	assert.True(t, user.CanAfford(decimal.NewFromInt(100)))
	assert.False(t, user.CanAfford(decimal.RequireFromString("100.01")))
}
