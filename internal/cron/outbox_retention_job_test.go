package cron

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmm341/avocado-ledger/pkg/db/dbtest"
	"github.com/dmm341/avocado-ledger/pkg/db/models"
	"github.com/dmm341/avocado-ledger/pkg/outbox"
)

type fakeRetentionRepo struct {
	cutoff time.Time
	err    error
}

func (f *fakeRetentionRepo) DeletePublishedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return 3, f.err
}

func TestOutboxRetentionCutoff(t *testing.T) {
	now := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	repo := &fakeRetentionRepo{}
	job, err := NewOutboxRetentionJob(OutboxRetentionJobParams{Logger: testLogger(), Repository: repo, MaxAge: 48 * time.Hour})
	require.NoError(t, err)
	job.(*outboxRetentionJob).now = func() time.Time { return now }

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, now.Add(-48*time.Hour), repo.cutoff)
}

func TestOutboxRetentionPropagatesError(t *testing.T) {
	job, err := NewOutboxRetentionJob(OutboxRetentionJobParams{Logger: testLogger(), Repository: &fakeRetentionRepo{err: errors.New("db down")}})
	require.NoError(t, err)
	require.Error(t, job.Run(context.Background()))
	assert.Equal(t, defaultOutboxMaxAge, job.(*outboxRetentionJob).maxAge)
}

func TestOutboxRetentionDeletesOnlyOldPublished(t *testing.T) {
	conn := dbtest.Open(t).DB()
	now := time.Now().UTC()
	old := now.Add(-60 * 24 * time.Hour)
	rows := []models.OutboxEvent{
		{EventType: "ledger.order.created", AggregateType: "farmer", Payload: json.RawMessage(`{}`), CreatedAt: old, PublishedAt: &old},
		{EventType: "ledger.order.created", AggregateType: "farmer", Payload: json.RawMessage(`{}`), CreatedAt: old},
		{EventType: "ledger.sale.created", AggregateType: "buyer", Payload: json.RawMessage(`{}`), CreatedAt: now, PublishedAt: &now},
	}
	require.NoError(t, conn.Create(&rows).Error)

	job, err := NewOutboxRetentionJob(OutboxRetentionJobParams{Logger: testLogger(), Repository: outbox.NewRepository(conn)})
	require.NoError(t, err)
	require.NoError(t, job.Run(context.Background()))

	var remaining int64
	require.NoError(t, conn.Model(&models.OutboxEvent{}).Count(&remaining).Error)
	assert.EqualValues(t, 2, remaining)
}
