package products

import (
	"context"

	"github.com/juju/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/inZane-Dev/microservicios--producto--inventario/internal/paging"
)

// ProductUseCase holds the registry business rules.
type ProductUseCase struct {
	repository Repository
	inventory  InventoryClient
	tracer     trace.Tracer
	logger     *zap.Logger
}

// NewProductUseCase creates a new ProductUseCase.
func NewProductUseCase(
	repository Repository,
	inventory InventoryClient,
	tracer trace.Tracer,
	logger *zap.Logger,
) *ProductUseCase {
	return &ProductUseCase{
		repository: repository,
		inventory:  inventory,
		tracer:     tracer,
		logger:     logger,
	}
}

// CreateProduct stores the product and then asks the ledger to open its
// stock record. A ledger failure leaves the stored product in place; the
// returned error names its id so the caller can reconcile.
func (uc *ProductUseCase) CreateProduct(ctx context.Context, fields ProductFields) (*Product, error) {
	ctx, span := uc.tracer.Start(ctx, "CreateProduct")
	defer span.End()

	// 1. Persist locally to obtain the id
	product := NewProduct(fields)
	if err := uc.repository.Create(ctx, product); err != nil {
		return nil, fail(span, errors.Annotate(err, "create product"))
	}
	span.SetAttributes(attribute.Int64("product.id", product.ID))

	// 2. Open the stock record on the ledger
	if err := uc.inventory.CreateStock(ctx, product.ID, product.Quantity); err != nil {
		uc.logger.Error("product stored without inventory record",
			zap.Int64("product_id", product.ID),
			zap.Int("quantity", product.Quantity),
			zap.Error(err),
		)
		return nil, fail(span, errors.Annotatef(err, "product %d created without inventory record", product.ID))
	}

	uc.logger.Info("product created",
		zap.Int64("product_id", product.ID),
		zap.Int("quantity", product.Quantity),
	)
	return product, nil
}

// DeleteProduct removes the ledger's stock record first and only then the
// product row, so a ledger failure leaves the product intact.
func (uc *ProductUseCase) DeleteProduct(ctx context.Context, id int64) error {
	ctx, span := uc.tracer.Start(ctx, "DeleteProduct", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	if _, err := uc.repository.Get(ctx, id); err != nil {
		return fail(span, errors.Trace(err))
	}

	if err := uc.inventory.DeleteStock(ctx, id); err != nil {
		uc.logger.Warn("inventory record not deleted, product kept",
			zap.Int64("product_id", id),
			zap.Error(err),
		)
		return fail(span, errors.Annotatef(err, "product %d not deleted, retry the delete", id))
	}

	if err := uc.repository.Delete(ctx, id); err != nil {
		return fail(span, errors.Annotate(err, "delete product"))
	}

	uc.logger.Info("product deleted", zap.Int64("product_id", id))
	return nil
}

// UpdateProduct changes the stored attributes only; the ledger quantity is
// left as it is.
func (uc *ProductUseCase) UpdateProduct(ctx context.Context, id int64, fields ProductFields) (*Product, error) {
	ctx, span := uc.tracer.Start(ctx, "UpdateProduct", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	product, err := uc.repository.Get(ctx, id)
	if err != nil {
		return nil, fail(span, errors.Trace(err))
	}

	product.Apply(fields)
	if err := uc.repository.Update(ctx, product); err != nil {
		return nil, fail(span, errors.Annotate(err, "update product"))
	}
	return product, nil
}

func (uc *ProductUseCase) GetProduct(ctx context.Context, id int64) (*Product, error) {
	ctx, span := uc.tracer.Start(ctx, "GetProduct", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	product, err := uc.repository.Get(ctx, id)
	if err != nil {
		return nil, fail(span, errors.Trace(err))
	}
	return product, nil
}

func (uc *ProductUseCase) ListProducts(ctx context.Context, req paging.Request) (*paging.Page[Product], error) {
	ctx, span := uc.tracer.Start(ctx, "ListProducts")
	defer span.End()

	page, err := uc.repository.List(ctx, req)
	if err != nil {
		return nil, fail(span, errors.Trace(err))
	}
	return page, nil
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
