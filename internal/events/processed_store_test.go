package events

import (
	"context"
	"errors"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessedStore(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewProcessedStoreWithDB(mock)
	ctx := context.Background()

	mock.ExpectQuery("SELECT EXISTS").WithArgs("appointment-email", "evt-1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	seen, err := store.AlreadyProcessed(ctx, "appointment-email", "evt-1")
	require.NoError(t, err)
	assert.True(t, seen)

	mock.ExpectQuery("SELECT EXISTS").WithArgs("appointment-email", "evt-2").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	seen, err = store.AlreadyProcessed(ctx, "appointment-email", "evt-2")
	require.NoError(t, err)
	assert.False(t, seen)

	mock.ExpectExec("INSERT INTO processed_events").WithArgs("appointment-email", "evt-2").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	first, err := store.MarkProcessed(ctx, "appointment-email", "evt-2")
	require.NoError(t, err)
	assert.True(t, first)

	mock.ExpectExec("INSERT INTO processed_events").WithArgs("appointment-email", "evt-2").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	again, err := store.MarkProcessed(ctx, "appointment-email", "evt-2")
	require.NoError(t, err)
	assert.False(t, again)

	mock.ExpectQuery("SELECT EXISTS").WithArgs("appointment-email", "evt-3").
		WillReturnError(errors.New("connection reset"))
	_, err = store.AlreadyProcessed(ctx, "appointment-email", "evt-3")
	assert.ErrorContains(t, err, "events: check processed")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryProcessedStore(t *testing.T) {
	store := NewMemoryProcessedStore()
	ctx := context.Background()

	seen, _ := store.AlreadyProcessed(ctx, "appointment-email", "evt")
	assert.False(t, seen, "fresh store reports processed")

	first, _ := store.MarkProcessed(ctx, "appointment-email", "evt")
	assert.True(t, first)
	again, _ := store.MarkProcessed(ctx, "appointment-email", "evt")
	assert.False(t, again, "second mark should report duplicate")

	seen, _ = store.AlreadyProcessed(ctx, "appointment-archive", "evt")
	assert.False(t, seen, "consumers must not share state")
}
