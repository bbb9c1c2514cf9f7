package service

import (
	"context"
	"time"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/repository"
)

const (
	MsgAddProductFailed    = "Erro ao adicionar o produto"
	MsgRemoveProductFailed = "Erro na remoção do produto"
	MsgUpdateAmountFailed  = "Erro na alteração de quantidade do produto"

	opAddProduct          = "add_product"
	opRemoveProduct       = "remove_product"
	opUpdateProductAmount = "update_product_amount"
)

// CartProvider is what UI code consumes. Operations never return errors:
// every failure becomes one notification with a fixed message.
type CartProvider interface {
	Cart() entity.Cart
	Summary() entity.CartSummary
	AddProduct(ctx context.Context, productID int)
	RemoveProduct(ctx context.Context, productID int)
	UpdateProductAmount(ctx context.Context, req UpdateProductAmount)
}

type cartProvider struct {
	store    *CartStore
	notifier repository.Notifier
	log      logger.Logger
	metrics  *metrics.MetricsManager
}

func NewCartProvider(store *CartStore, notifier repository.Notifier, log logger.Logger, m *metrics.MetricsManager) CartProvider {
	return &cartProvider{
		store:    store,
		notifier: notifier,
		log:      log,
		metrics:  m,
	}
}

func (p *cartProvider) Cart() entity.Cart {
	return p.store.Cart()
}

func (p *cartProvider) Summary() entity.CartSummary {
	return p.store.Summary()
}

func (p *cartProvider) AddProduct(ctx context.Context, productID int) {
	started := time.Now()
	_, err := p.store.AddProduct(ctx, productID)
	p.finish(ctx, opAddProduct, started, err, MsgAddProductFailed)
}

func (p *cartProvider) RemoveProduct(ctx context.Context, productID int) {
	started := time.Now()
	_, err := p.store.RemoveProduct(ctx, productID)
	p.finish(ctx, opRemoveProduct, started, err, MsgRemoveProductFailed)
}

func (p *cartProvider) UpdateProductAmount(ctx context.Context, req UpdateProductAmount) {
	started := time.Now()
	_, err := p.store.UpdateProductAmount(ctx, req)
	p.finish(ctx, opUpdateProductAmount, started, err, MsgUpdateAmountFailed)
}

func (p *cartProvider) finish(ctx context.Context, op string, started time.Time, err error, failureMsg string) {
	if p.metrics != nil {
		p.metrics.ObserveOperation(op, started, err)
	}
	if err == nil {
		return
	}
	p.log.Warnf("Cart operation %s failed: %v", op, err)
	p.notifier.Error(ctx, failureMsg)
}
