package inventory

import (
	"context"

	"github.com/juju/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/inZane-Dev/microservicios--producto--inventario/internal/paging"
)

// maxConcurrentSnapshots bounds the registry calls made for one page.
const maxConcurrentSnapshots = 8

// Inventory event names written to the log.
const (
	EventInventoryCreated  = "inventory_created"
	EventInventoryDeleted  = "inventory_deleted"
	EventPurchaseProcessed = "purchase_processed"
)

// InventoryUseCase holds the ledger business rules.
type InventoryUseCase struct {
	repository      Repository
	products        ProductsClient
	tracer          trace.Tracer
	logger          *zap.Logger
	purchaseCounter metric.Int64Counter
	degradedCounter metric.Int64Counter
}

// NewInventoryUseCase creates a new InventoryUseCase.
func NewInventoryUseCase(
	repository Repository,
	products ProductsClient,
	tracer trace.Tracer,
	logger *zap.Logger,
) *InventoryUseCase {
	meter := otel.Meter("inventory-service")
	purchaseCounter, err := meter.Int64Counter("inventory.purchases",
		metric.WithDescription("Purchases by outcome"),
	)
	if err != nil {
		logger.Warn("purchase counter unavailable", zap.Error(err))
		purchaseCounter = noop.Int64Counter{}
	}
	degradedCounter, err := meter.Int64Counter("inventory.degraded_reads",
		metric.WithDescription("Combined reads served with a placeholder product"),
	)
	if err != nil {
		logger.Warn("degraded read counter unavailable", zap.Error(err))
		degradedCounter = noop.Int64Counter{}
	}

	return &InventoryUseCase{
		repository:      repository,
		products:        products,
		tracer:          tracer,
		logger:          logger,
		purchaseCounter: purchaseCounter,
		degradedCounter: degradedCounter,
	}
}

// CreateInventoryRecord opens the stock record of a product.
func (uc *InventoryUseCase) CreateInventoryRecord(ctx context.Context, productID int64, quantity int) (*InventoryRecord, error) {
	ctx, span := uc.tracer.Start(ctx, "CreateInventoryRecord", trace.WithAttributes(attribute.Int64("product.id", productID)))
	defer span.End()

	if quantity < 0 {
		return nil, fail(span, errors.NotValidf("negative quantity %d", quantity))
	}

	exists, err := uc.repository.Exists(ctx, productID)
	if err != nil {
		return nil, fail(span, errors.Trace(err))
	}
	if exists {
		return nil, fail(span, errors.AlreadyExistsf("inventory for product %d", productID))
	}

	record := NewInventoryRecord(productID, quantity)
	if err := uc.repository.Create(ctx, record); err != nil {
		return nil, fail(span, errors.Trace(err))
	}

	uc.emit(EventInventoryCreated, record)
	return record, nil
}

// DeleteInventoryRecordByProductID removes the stock record of a product.
func (uc *InventoryUseCase) DeleteInventoryRecordByProductID(ctx context.Context, productID int64) error {
	ctx, span := uc.tracer.Start(ctx, "DeleteInventoryRecord", trace.WithAttributes(attribute.Int64("product.id", productID)))
	defer span.End()

	record, err := uc.repository.DeleteByProductID(ctx, productID)
	if err != nil {
		return fail(span, errors.Trace(err))
	}

	uc.emit(EventInventoryDeleted, record)
	return nil
}

// GetCombined returns the local stock of a product enriched with registry
// data. A missing local record is NotFound whatever the registry state; a
// registry failure only degrades the product snapshot.
func (uc *InventoryUseCase) GetCombined(ctx context.Context, productID int64) (*InventoryView, error) {
	ctx, span := uc.tracer.Start(ctx, "GetCombined", trace.WithAttributes(attribute.Int64("product.id", productID)))
	defer span.End()

	record, err := uc.repository.GetByProductID(ctx, productID)
	if err != nil {
		return nil, fail(span, errors.Trace(err))
	}

	view := uc.enrich(ctx, *record)
	span.SetAttributes(attribute.Bool("inventory.degraded", view.Degraded))
	return &view, nil
}

// List returns one page of combined views. Snapshots are fetched concurrently
// and a failure degrades only the record it belongs to.
func (uc *InventoryUseCase) List(ctx context.Context, req paging.Request) (*paging.Page[InventoryView], error) {
	ctx, span := uc.tracer.Start(ctx, "ListInventory")
	defer span.End()

	records, err := uc.repository.List(ctx, req)
	if err != nil {
		return nil, fail(span, errors.Trace(err))
	}

	views := make([]InventoryView, len(records.Content))
	g := new(errgroup.Group)
	g.SetLimit(maxConcurrentSnapshots)
	for i, record := range records.Content {
		g.Go(func() error {
			views[i] = uc.enrich(ctx, record)
			return nil
		})
	}
	_ = g.Wait()

	return paging.NewPage(req, views, records.TotalElements), nil
}

// Purchase takes amount units out of the stock of a product inside one
// transaction holding the row lock.
func (uc *InventoryUseCase) Purchase(ctx context.Context, productID int64, amount int) (*InventoryRecord, error) {
	ctx, span := uc.tracer.Start(ctx, "Purchase", trace.WithAttributes(
		attribute.Int64("product.id", productID),
		attribute.Int("purchase.quantity", amount),
	))
	defer span.End()

	if amount <= 0 {
		return nil, fail(span, errors.NotValidf("purchase quantity %d", amount))
	}

	// 1. Start the transaction
	tx, err := uc.repository.BeginTx(ctx)
	if err != nil {
		return nil, fail(span, errors.Annotate(err, "begin purchase"))
	}
	defer tx.Rollback()

	// 2. Lock the record (SELECT FOR UPDATE)
	record, err := uc.repository.GetForUpdate(ctx, tx, productID)
	if err != nil {
		return nil, fail(span, errors.Trace(err))
	}

	// 3. Check and take the stock
	if err := record.Withdraw(amount); err != nil {
		uc.logger.Info("purchase rejected",
			zap.Int64("product_id", productID),
			zap.Int("requested", amount),
			zap.Int("available", record.Quantity),
		)
		uc.purchaseCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "insufficient_stock")))
		return nil, fail(span, err)
	}

	if err := uc.repository.UpdateQuantity(ctx, tx, record); err != nil {
		return nil, fail(span, errors.Trace(err))
	}

	// 4. Commit
	if err := tx.Commit(); err != nil {
		return nil, fail(span, errors.Annotate(err, "commit purchase"))
	}

	uc.purchaseCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "success")))
	uc.emit(EventPurchaseProcessed, record)
	return record, nil
}

// enrich combines record with its product snapshot, degrading on failure.
func (uc *InventoryUseCase) enrich(ctx context.Context, record InventoryRecord) InventoryView {
	view := InventoryView{
		InventoryID: record.ID,
		ProductID:   record.ProductID,
		Quantity:    record.Quantity,
	}

	snapshot, err := uc.products.FetchSnapshot(ctx, record.ProductID)
	if err != nil {
		uc.logger.Warn("product details unavailable, degrading",
			zap.Int64("product_id", record.ProductID),
			zap.Error(err),
		)
		uc.degradedCounter.Add(ctx, 1)
		view.Product = ProductSnapshot{ID: record.ProductID, Name: UnavailableProductName}
		view.Degraded = true
		return view
	}

	view.Product = *snapshot
	return view
}

func (uc *InventoryUseCase) emit(event string, record *InventoryRecord) {
	uc.logger.Info("inventory event",
		zap.String("event", event),
		zap.Int64("product_id", record.ProductID),
		zap.Int64("inventory_id", record.ID),
		zap.Int("quantity", record.Quantity),
	)
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
