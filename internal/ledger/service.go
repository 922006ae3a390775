package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dmm341/avocado-ledger/pkg/db/models"
	"github.com/dmm341/avocado-ledger/pkg/enums"
	pkgerrors "github.com/dmm341/avocado-ledger/pkg/errors"
	"github.com/dmm341/avocado-ledger/pkg/logger"
	"github.com/dmm341/avocado-ledger/pkg/metrics"
	"github.com/dmm341/avocado-ledger/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service is the reconciliation engine. Every write stores the line item and
// the recomputed owner aggregate in one transaction.
type Service interface {
	CreateOrder(ctx context.Context, input OrderInput) (*models.Order, error)
	UpdateOrder(ctx context.Context, id uuid.UUID, input OrderInput) (*models.Order, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) error
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)

	CreateSale(ctx context.Context, input SaleInput) (*models.Sale, error)
	UpdateSale(ctx context.Context, id uuid.UUID, input SaleInput) (*models.Sale, error)
	DeleteSale(ctx context.Context, id uuid.UUID) error
	GetSale(ctx context.Context, id uuid.UUID) (*models.Sale, error)
	ListSales(ctx context.Context) ([]models.Sale, error)

	ReconcileFarmer(ctx context.Context, id uuid.UUID) (*ReconcileResult, error)
	ReconcileBuyer(ctx context.Context, id uuid.UUID) (*ReconcileResult, error)
}

// OrderInput carries the editable fields of an order. On update FarmerID and
// OrderDate are optional and, when set, must match the stored row.
type OrderInput struct {
	FarmerID       uuid.UUID
	CustomerName   string
	AvocadoType    string
	NumberOfFruits int64
	PricePerFruit  decimal.Decimal
	TotalAmount    *decimal.Decimal
	OrderDate      *time.Time
}

// SaleInput mirrors OrderInput for the buyer side.
type SaleInput struct {
	BuyerID        uuid.UUID
	BuyerName      string
	AvocadoType    string
	NumberOfFruits int64
	PricePerFruit  decimal.Decimal
	TotalAmount    *decimal.Decimal
	SaleDate       *time.Time
}

// ReconcileResult reports an aggregate before and after recomputation.
type ReconcileResult struct {
	OwnerKind enums.OwnerKind
	OwnerID   uuid.UUID
	Before    Totals
	After     Totals
	Drifted   bool
}

// ServiceParams wires the reconciliation engine.
type ServiceParams struct {
	Repo    Repository
	Tx      txRunner
	Outbox  outboxPublisher
	Metrics *metrics.LedgerMetrics
	Logger  *logger.Logger
	Now     func() time.Time
}

type service struct {
	repo    Repository
	tx      txRunner
	outbox  outboxPublisher
	metrics *metrics.LedgerMetrics
	logg    *logger.Logger
	now     func() time.Time
}

// NewService builds the reconciliation engine. Outbox and Metrics are optional.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:    params.Repo,
		tx:      params.Tx,
		outbox:  params.Outbox,
		metrics: params.Metrics,
		logg:    params.Logger,
		now:     now,
	}, nil
}

func (s *service) CreateOrder(ctx context.Context, input OrderInput) (order *models.Order, err error) {
	defer func() { s.metrics.IncWrite("order", "create", err) }()

	if input.FarmerID == uuid.Nil {
		return nil, fieldError("farmer_id", "is required")
	}
	avocado, price, total, err := normalizeLine(input.AvocadoType, "", input.NumberOfFruits, input.PricePerFruit, input.TotalAmount)
	if err != nil {
		return nil, err
	}
	orderDate := s.now().UTC()
	if input.OrderDate != nil && !input.OrderDate.IsZero() {
		orderDate = input.OrderDate.UTC()
	}
	order = &models.Order{
		FarmerID:       input.FarmerID,
		CustomerName:   strings.TrimSpace(input.CustomerName),
		AvocadoType:    avocado,
		NumberOfFruits: input.NumberOfFruits,
		PricePerFruit:  price,
		TotalAmount:    total,
		OrderDate:      orderDate,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := s.requireFarmer(ctx, repo, input.FarmerID); err != nil {
			return err
		}
		if err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}
		return s.afterWrite(ctx, tx, repo, farmerBook, order.FarmerID, "order", order.ID, enums.EventOrderCreated)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) UpdateOrder(ctx context.Context, id uuid.UUID, input OrderInput) (order *models.Order, err error) {
	defer func() { s.metrics.IncWrite("order", "update", err) }()

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := repo.FindOrder(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
		}
		if existing == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		if input.FarmerID != uuid.Nil && input.FarmerID != existing.FarmerID {
			return fieldError("farmer_id", "cannot be changed; owner reassignment is not allowed")
		}
		if input.OrderDate != nil && !input.OrderDate.IsZero() && !input.OrderDate.Equal(existing.OrderDate) {
			return fieldError("order_date", "cannot be changed")
		}
		avocado, price, total, err := normalizeLine(input.AvocadoType, existing.AvocadoType, input.NumberOfFruits, input.PricePerFruit, input.TotalAmount)
		if err != nil {
			return err
		}
		if err := s.requireFarmer(ctx, repo, existing.FarmerID); err != nil {
			return err
		}
		if name := strings.TrimSpace(input.CustomerName); name != "" {
			existing.CustomerName = name
		}
		existing.AvocadoType = avocado
		existing.NumberOfFruits = input.NumberOfFruits
		existing.PricePerFruit = price
		existing.TotalAmount = total
		if err := repo.UpdateOrder(ctx, existing); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order")
		}
		order = existing
		return s.afterWrite(ctx, tx, repo, farmerBook, existing.FarmerID, "order", existing.ID, enums.EventOrderUpdated)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) DeleteOrder(ctx context.Context, id uuid.UUID) (err error) {
	defer func() { s.metrics.IncWrite("order", "delete", err) }()

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := repo.FindOrder(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
		}
		if existing == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		if err := repo.DeleteOrder(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete order")
		}
		return s.afterWrite(ctx, tx, repo, farmerBook, existing.FarmerID, "order", existing.ID, enums.EventOrderDeleted)
	})
}

func (s *service) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindOrder(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *service) ListOrders(ctx context.Context) ([]models.Order, error) {
	rows, err := s.repo.ListOrders(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return rows, nil
}

func (s *service) CreateSale(ctx context.Context, input SaleInput) (sale *models.Sale, err error) {
	defer func() { s.metrics.IncWrite("sale", "create", err) }()

	if input.BuyerID == uuid.Nil {
		return nil, fieldError("buyer_id", "is required")
	}
	avocado, price, total, err := normalizeLine(input.AvocadoType, "", input.NumberOfFruits, input.PricePerFruit, input.TotalAmount)
	if err != nil {
		return nil, err
	}
	saleDate := s.now().UTC()
	if input.SaleDate != nil && !input.SaleDate.IsZero() {
		saleDate = input.SaleDate.UTC()
	}
	sale = &models.Sale{
		BuyerID:        input.BuyerID,
		BuyerName:      strings.TrimSpace(input.BuyerName),
		AvocadoType:    avocado,
		NumberOfFruits: input.NumberOfFruits,
		PricePerFruit:  price,
		TotalAmount:    total,
		SaleDate:       saleDate,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		buyer, err := s.requireBuyer(ctx, repo, input.BuyerID)
		if err != nil {
			return err
		}
		if sale.BuyerName == "" {
			sale.BuyerName = buyer.Name
		}
		if err := repo.CreateSale(ctx, sale); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create sale")
		}
		return s.afterWrite(ctx, tx, repo, buyerBook, sale.BuyerID, "sale", sale.ID, enums.EventSaleCreated)
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

func (s *service) UpdateSale(ctx context.Context, id uuid.UUID, input SaleInput) (sale *models.Sale, err error) {
	defer func() { s.metrics.IncWrite("sale", "update", err) }()

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := repo.FindSale(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load sale")
		}
		if existing == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
		}
		if input.BuyerID != uuid.Nil && input.BuyerID != existing.BuyerID {
			return fieldError("buyer_id", "cannot be changed; owner reassignment is not allowed")
		}
		if input.SaleDate != nil && !input.SaleDate.IsZero() && !input.SaleDate.Equal(existing.SaleDate) {
			return fieldError("sale_date", "cannot be changed")
		}
		avocado, price, total, err := normalizeLine(input.AvocadoType, existing.AvocadoType, input.NumberOfFruits, input.PricePerFruit, input.TotalAmount)
		if err != nil {
			return err
		}
		if _, err := s.requireBuyer(ctx, repo, existing.BuyerID); err != nil {
			return err
		}
		if name := strings.TrimSpace(input.BuyerName); name != "" {
			existing.BuyerName = name
		}
		existing.AvocadoType = avocado
		existing.NumberOfFruits = input.NumberOfFruits
		existing.PricePerFruit = price
		existing.TotalAmount = total
		if err := repo.UpdateSale(ctx, existing); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update sale")
		}
		sale = existing
		return s.afterWrite(ctx, tx, repo, buyerBook, existing.BuyerID, "sale", existing.ID, enums.EventSaleUpdated)
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

func (s *service) DeleteSale(ctx context.Context, id uuid.UUID) (err error) {
	defer func() { s.metrics.IncWrite("sale", "delete", err) }()

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := repo.FindSale(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load sale")
		}
		if existing == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
		}
		if err := repo.DeleteSale(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete sale")
		}
		return s.afterWrite(ctx, tx, repo, buyerBook, existing.BuyerID, "sale", existing.ID, enums.EventSaleDeleted)
	})
}

func (s *service) GetSale(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	sale, err := s.repo.FindSale(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load sale")
	}
	if sale == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
	}
	return sale, nil
}

func (s *service) ListSales(ctx context.Context) ([]models.Sale, error) {
	rows, err := s.repo.ListSales(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list sales")
	}
	return rows, nil
}

func (s *service) ReconcileFarmer(ctx context.Context, id uuid.UUID) (*ReconcileResult, error) {
	return s.reconcileOwner(ctx, farmerBook, id)
}

func (s *service) ReconcileBuyer(ctx context.Context, id uuid.UUID) (*ReconcileResult, error) {
	return s.reconcileOwner(ctx, buyerBook, id)
}

func (s *service) reconcileOwner(ctx context.Context, book ownerBook, id uuid.UUID) (*ReconcileResult, error) {
	var result *ReconcileResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		res, err := s.recompute(ctx, repo, book, id)
		if err != nil {
			return err
		}
		result = res
		if !res.Drifted {
			return nil
		}
		s.metrics.IncDrift(string(book.kind))
		if err := repo.CreateDriftReports(ctx, driftReports(ctx, res)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record drift")
		}
		return s.emit(ctx, tx, book, res, "", uuid.Nil, enums.EventAggregateReconciled)
	})
	if pkgerrors.IsCode(err, pkgerrors.CodeReference) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, fmt.Sprintf("%s not found", book.kind))
	}
	if err != nil {
		return nil, err
	}
	if result.Drifted {
		logCtx := s.logg.WithOwner(ctx, string(book.kind), id.String())
		logCtx = s.logg.WithFields(logCtx, map[string]any{
			"stored_fruits":  result.Before.Fruits,
			"stored_money":   result.Before.Money.String(),
			"derived_fruits": result.After.Fruits,
			"derived_money":  result.After.Money.String(),
		})
		s.logg.Warn(logCtx, "aggregate drift repaired")
	}
	return result, nil
}

// afterWrite recomputes the owner aggregate from all of its current lines and
// queues the change event. It runs inside the caller's transaction.
func (s *service) afterWrite(ctx context.Context, tx *gorm.DB, repo Repository, book ownerBook, ownerID uuid.UUID, lineKind string, lineID uuid.UUID, event enums.OutboxEventType) error {
	res, err := s.recompute(ctx, repo, book, ownerID)
	if err != nil {
		return err
	}
	logCtx := s.logg.WithOwner(ctx, string(book.kind), ownerID.String())
	logCtx = s.logg.WithFields(logCtx, map[string]any{
		"event":        string(event),
		"line_id":      lineID.String(),
		"total_fruits": res.After.Fruits,
		"total_money":  res.After.Money.String(),
	})
	s.logg.Info(logCtx, "ledger write reconciled")
	return s.emit(ctx, tx, book, res, lineKind, lineID, event)
}

func (s *service) recompute(ctx context.Context, repo Repository, book ownerBook, ownerID uuid.UUID) (*ReconcileResult, error) {
	started := s.now()
	defer func() { s.metrics.ObserveRecompute(string(book.kind), s.now().Sub(started)) }()

	stored, err := book.stored(ctx, repo, ownerID)
	if err != nil {
		return nil, err
	}
	derived, err := book.derive(ctx, repo, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("aggregate %s lines", book.kind))
	}
	if derived.Money.GreaterThan(MaxMoney) {
		return nil, fieldError("total_amount", fmt.Sprintf("would push %s total_money past %s", book.kind, MaxMoney.StringFixed(2)))
	}
	if err := book.store(ctx, repo, ownerID, derived); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("store %s totals", book.kind))
	}
	return &ReconcileResult{
		OwnerKind: book.kind,
		OwnerID:   ownerID,
		Before:    stored,
		After:     derived,
		Drifted:   !stored.Equal(derived),
	}, nil
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, book ownerBook, res *ReconcileResult, lineKind string, lineID uuid.UUID, event enums.OutboxEventType) error {
	if s.outbox == nil {
		return nil
	}
	data := outbox.LedgerChanged{
		OwnerKind:   string(book.kind),
		OwnerID:     res.OwnerID.String(),
		LineKind:    lineKind,
		TotalFruits: res.After.Fruits,
		TotalMoney:  res.After.Money,
		Drifted:     res.Drifted,
	}
	if lineID != uuid.Nil {
		data.LineID = lineID.String()
	}
	if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     event,
		AggregateType: enums.AggregateFor(book.kind),
		AggregateID:   res.OwnerID,
		RequestID:     CorrelationID(ctx),
		Data:          data,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "queue ledger event")
	}
	return nil
}

func (s *service) requireFarmer(ctx context.Context, repo Repository, id uuid.UUID) error {
	farmer, err := repo.FindFarmer(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load farmer")
	}
	if farmer == nil {
		return referenceError("farmer", id)
	}
	return nil
}

func (s *service) requireBuyer(ctx context.Context, repo Repository, id uuid.UUID) (*models.Buyer, error) {
	buyer, err := repo.FindBuyer(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load buyer")
	}
	if buyer == nil {
		return nil, referenceError("buyer", id)
	}
	return buyer, nil
}

// normalizeLine validates quantity and price and derives total_amount. A
// caller-supplied total must agree with the derived one.
func normalizeLine(avocadoRaw string, fallback enums.AvocadoType, fruits int64, price decimal.Decimal, total *decimal.Decimal) (enums.AvocadoType, decimal.Decimal, decimal.Decimal, error) {
	details := map[string]string{}
	switch {
	case fruits <= 0:
		details["number_of_fruits"] = "must be greater than 0"
	case fruits > MaxFruitsPerLine:
		details["number_of_fruits"] = fmt.Sprintf("must be at most %d", MaxFruitsPerLine)
	}
	switch {
	case !price.Equal(price.Round(2)):
		details["price_per_fruit"] = "must not have more than 2 decimal places"
	case !price.IsPositive():
		details["price_per_fruit"] = "must be greater than 0"
	case price.GreaterThan(MaxPricePerFruit):
		details["price_per_fruit"] = "must be at most " + MaxPricePerFruit.String()
	}
	avocado := fallback
	if strings.TrimSpace(avocadoRaw) != "" || fallback == "" {
		parsed, err := enums.ParseAvocadoType(avocadoRaw)
		if err != nil {
			details["avocado_type"] = "must be one of [Hass Fuerte]"
		}
		avocado = parsed
	}
	if len(details) > 0 {
		return "", decimal.Decimal{}, decimal.Decimal{}, validationError(details)
	}
	price = price.Round(2)
	amount := LineAmount(fruits, price)
	if amount.GreaterThan(MaxMoney) {
		return "", decimal.Decimal{}, decimal.Decimal{}, fieldError("total_amount", "must be at most "+MaxMoney.StringFixed(2))
	}
	if total != nil && !total.Equal(amount) {
		return "", decimal.Decimal{}, decimal.Decimal{}, fieldError("total_amount", fmt.Sprintf("must equal number_of_fruits * price_per_fruit (%s)", amount.StringFixed(2)))
	}
	return avocado, price, amount, nil
}

func validationError(details map[string]string) error {
	msg := "validation failed"
	if len(details) == 1 {
		for field, reason := range details {
			msg = field + " " + reason
		}
	}
	return pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails(details)
}

func fieldError(field, reason string) error {
	return validationError(map[string]string{field: reason})
}

func referenceError(kind string, id uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeReference, fmt.Sprintf("%s %s does not exist", kind, id)).
		WithDetails(map[string]any{kind + "_id": id.String()})
}

func driftReports(ctx context.Context, res *ReconcileResult) []models.DriftReport {
	var reports []models.DriftReport
	if res.Before.Fruits != res.After.Fruits {
		reports = append(reports, models.DriftReport{
			CheckType:     enums.DriftCheckFruits,
			OwnerKind:     res.OwnerKind,
			OwnerID:       res.OwnerID,
			StoredValue:   fmt.Sprintf("%d", res.Before.Fruits),
			DerivedValue:  fmt.Sprintf("%d", res.After.Fruits),
			CorrelationID: CorrelationID(ctx),
		})
	}
	if !res.Before.Money.Equal(res.After.Money) {
		reports = append(reports, models.DriftReport{
			CheckType:     enums.DriftCheckMoney,
			OwnerKind:     res.OwnerKind,
			OwnerID:       res.OwnerID,
			StoredValue:   res.Before.Money.StringFixed(2),
			DerivedValue:  res.After.Money.StringFixed(2),
			CorrelationID: CorrelationID(ctx),
		})
	}
	return reports
}
