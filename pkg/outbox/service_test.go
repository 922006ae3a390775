package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dmm341/avocado-ledger/pkg/db/dbtest"
	"github.com/dmm341/avocado-ledger/pkg/db/models"
	"github.com/dmm341/avocado-ledger/pkg/enums"
)

func TestEmitWritesEnvelopeInsideTx(t *testing.T) {
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	svc := NewService(repo, nil)
	ownerID := uuid.New()

	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateFarmer,
			AggregateID:   ownerID,
			RequestID:     "req-1",
			Data: LedgerChanged{
				OwnerKind:   "farmer",
				OwnerID:     ownerID.String(),
				TotalFruits: 10,
				TotalMoney:  decimal.NewFromInt(50),
			},
		})
	})
	require.NoError(t, err)

	rows, err := repo.FetchUnpublishedForPublish(client.DB(), 10, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, enums.EventOrderCreated, rows[0].EventType)
	require.Equal(t, ownerID, rows[0].AggregateID)

	var envelope PayloadEnvelope
	require.NoError(t, json.Unmarshal(rows[0].Payload, &envelope))
	require.Equal(t, 1, envelope.Version)
	require.Equal(t, "req-1", envelope.RequestID)
	require.NotEmpty(t, envelope.EventID)

	var data LedgerChanged
	require.NoError(t, json.Unmarshal(envelope.Data, &data))
	require.Equal(t, int64(10), data.TotalFruits)
	require.True(t, data.TotalMoney.Equal(decimal.NewFromInt(50)))
}

func TestEmitRolledBackWithTx(t *testing.T) {
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	svc := NewService(repo, nil)

	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		if err := svc.Emit(context.Background(), tx, DomainEvent{
			EventType:     enums.EventSaleDeleted,
			AggregateType: enums.AggregateBuyer,
			AggregateID:   uuid.New(),
			Data:          map[string]any{},
		}); err != nil {
			return err
		}
		return gorm.ErrInvalidData
	})
	require.ErrorIs(t, err, gorm.ErrInvalidData)

	rows, err := repo.FetchUnpublishedForPublish(client.DB(), 10, 0)
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestEmitRequiresTxAndKnownType(t *testing.T) {
	svc := NewService(NewRepository(nil), nil)
	require.Error(t, svc.Emit(context.Background(), nil, DomainEvent{EventType: enums.EventOrderCreated}))

	client := dbtest.Open(t)
	require.Error(t, svc.Emit(context.Background(), client.DB(), DomainEvent{EventType: "bogus"}))
}

func TestRepositoryLifecycle(t *testing.T) {
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	ctx := context.Background()

	first := models.OutboxEvent{EventType: enums.EventOrderCreated, AggregateType: enums.AggregateFarmer, AggregateID: uuid.New(), Payload: json.RawMessage(`{}`)}
	second := models.OutboxEvent{EventType: enums.EventOrderUpdated, AggregateType: enums.AggregateFarmer, AggregateID: uuid.New(), Payload: json.RawMessage(`{}`)}
	require.NoError(t, repo.Insert(client.DB(), first))
	require.NoError(t, repo.Insert(client.DB(), second))

	tx := client.DB()
	rows, err := repo.FetchUnpublishedForPublish(tx, 10, 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.NoError(t, repo.MarkPublishedTx(tx, rows[0].ID))
	require.NoError(t, repo.MarkFailedTx(tx, rows[1].ID, gorm.ErrInvalidTransaction))
	require.NoError(t, repo.MarkFailedTx(tx, rows[1].ID, gorm.ErrInvalidTransaction))

	pending, err := repo.FetchUnpublishedForPublish(tx, 10, 2)
	require.NoError(t, err)
	require.Empty(t, pending, "published and exhausted rows are skipped")

	deleted, err := repo.DeletePublishedBefore(ctx, time.Now().UTC().Add(time.Minute))
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted)
}

func TestTerminalRowsLandInDLQ(t *testing.T) {
	client := dbtest.Open(t)
	repo := NewRepository(client.DB())
	dlq := NewDLQRepository(client.DB())
	ctx := context.Background()

	event := models.OutboxEvent{EventType: enums.EventSaleCreated, AggregateType: enums.AggregateBuyer, AggregateID: uuid.New(), Payload: json.RawMessage(`{}`)}
	require.NoError(t, repo.Insert(client.DB(), event))
	rows, err := repo.FetchUnpublishedForPublish(client.DB(), 10, 5)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	long := strings.Repeat("x", 2000)
	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := dlq.InsertTx(tx, models.OutboxDLQ{
			EventID:       rows[0].ID,
			EventType:     rows[0].EventType,
			AggregateType: rows[0].AggregateType,
			AggregateID:   rows[0].AggregateID,
			Payload:       rows[0].Payload,
			ErrorReason:   enums.OutboxDLQReasonNonRetryable,
			ErrorMessage:  &long,
			FailedAt:      time.Now().UTC(),
		}); err != nil {
			return err
		}
		return repo.MarkTerminalTx(tx, rows[0].ID, errors.New("bad payload"), 5)
	}))

	pending, err := repo.FetchUnpublishedForPublish(client.DB(), 10, 5)
	require.NoError(t, err)
	require.Empty(t, pending)

	entry, err := dlq.FindByEventID(ctx, rows[0].ID)
	require.NoError(t, err)
	require.NotNil(t, entry)
	require.Len(t, *entry.ErrorMessage, maxErrorLen)

	missing, err := dlq.FindByEventID(ctx, uuid.New())
	require.NoError(t, err)
	require.Nil(t, missing)

	listed, err := dlq.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)
}
