package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/repository"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultSnapshotWriteTimeout = 5 * time.Second
const tracerName = "cart-service/cart-store"

type UpdateProductAmount struct {
	ProductID int `json:"productId"`
	Amount    int `json:"amount"`
}

// Listener observes every committed cart. It runs while the store holds its
// write lock, so listeners see commits in order and must not call back into
// the store's mutating methods.
type Listener func(ctx context.Context, cart entity.Cart)

type CartStoreConfig struct {
	SnapshotKey          string
	SnapshotWriteTimeout time.Duration
	// TracerProvider defaults to the global provider.
	TracerProvider trace.TracerProvider
}

// CartStore owns the single authoritative cart. Mutations are serialized by
// one writer lock held across the catalog fetch, so overlapping calls cannot
// lose an update.
type CartStore struct {
	mu        sync.RWMutex
	cart      entity.Cart
	loaded    bool
	listeners []Listener

	catalog      repository.ProductCatalog
	snapshots    repository.SnapshotStore
	snapshotKey  string
	writeTimeout time.Duration
	log          logger.Logger
	metrics      *metrics.MetricsManager
	tracer       trace.Tracer
}

// NewCartStore registers snapshot persistence as the first listener. metrics
// may be nil.
func NewCartStore(
	catalog repository.ProductCatalog,
	snapshots repository.SnapshotStore,
	log logger.Logger,
	m *metrics.MetricsManager,
	cfg CartStoreConfig,
) *CartStore {
	key := cfg.SnapshotKey
	if key == "" {
		key = entity.DefaultSnapshotKey
	}
	writeTimeout := cfg.SnapshotWriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = defaultSnapshotWriteTimeout
	}
	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	s := &CartStore{
		cart:         entity.NewCart(),
		catalog:      catalog,
		snapshots:    snapshots,
		snapshotKey:  key,
		writeTimeout: writeTimeout,
		log:          log.With("component", "cart_store"),
		metrics:      m,
		tracer:       tp.Tracer(tracerName),
	}
	s.listeners = append(s.listeners, s.persistSnapshot)
	return s
}

func (s *CartStore) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Load reads the persisted snapshot. A missing or unparseable snapshot yields
// an empty cart, and invalid lines of a readable one are dropped. A storage
// read failure is returned so a transient outage cannot overwrite the
// shopper's saved cart. Listeners run once afterwards, which rewrites the
// snapshot unconditionally.
func (s *CartStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loaded = false
	return s.ensureLoadedLocked(ctx)
}

func (s *CartStore) ensureLoadedLocked(ctx context.Context) error {
	if s.loaded {
		return nil
	}

	cart := entity.NewCart()
	raw, err := s.snapshots.Get(ctx, s.snapshotKey)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		s.log.Infof("No cart snapshot under %s, starting empty", s.snapshotKey)
	case err != nil:
		s.log.Errorf("Error reading cart snapshot %s: %v", s.snapshotKey, err)
		return fmt.Errorf("could not load cart snapshot: %w", err)
	default:
		parsed, dropped, parseErr := entity.UnmarshalSnapshot(raw)
		if parseErr != nil {
			s.log.Warnf("Discarding corrupt cart snapshot %s: %v", s.snapshotKey, parseErr)
			if s.metrics != nil {
				s.metrics.SnapshotCorrupt.Inc()
			}
			break
		}
		cart = parsed
		if dropped > 0 {
			s.log.Warnf("Dropped %d invalid line items from cart snapshot %s", dropped, s.snapshotKey)
			if s.metrics != nil {
				s.metrics.SnapshotLinesDropped.Add(float64(dropped))
			}
		}
		s.log.Infof("Cart snapshot loaded with %d items", len(cart))
	}

	s.loaded = true
	s.commitLocked(ctx, cart)
	return nil
}

func (s *CartStore) Cart() entity.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Clone()
}

func (s *CartStore) Summary() entity.CartSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Summary()
}

func (s *CartStore) AddProduct(ctx context.Context, productID int) (entity.Cart, error) {
	ctx, span := s.tracer.Start(ctx, "CartStore.AddProduct", trace.WithAttributes(attribute.Int("product.id", productID)))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoadedLocked(ctx); err != nil {
		return nil, failSpan(span, err)
	}

	products, err := s.catalog.ListProducts(ctx)
	if err != nil {
		s.log.Errorf("Failed to fetch catalog while adding product %d: %v", productID, err)
		return nil, failSpan(span, fmt.Errorf("could not fetch catalog: %w", err))
	}

	product, found := findProduct(products, productID)
	if !found {
		return nil, failSpan(span, fmt.Errorf("product %d: %w", productID, entity.ErrProductNotFound))
	}

	s.commitLocked(ctx, s.cart.AddItem(product))
	s.log.Debugf("Product %d added to cart", productID)
	return s.cart.Clone(), nil
}

func (s *CartStore) RemoveProduct(ctx context.Context, productID int) (entity.Cart, error) {
	ctx, span := s.tracer.Start(ctx, "CartStore.RemoveProduct", trace.WithAttributes(attribute.Int("product.id", productID)))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoadedLocked(ctx); err != nil {
		return nil, failSpan(span, err)
	}

	next, err := s.cart.RemoveItem(productID)
	if err != nil {
		return nil, failSpan(span, fmt.Errorf("product %d: %w", productID, err))
	}

	s.commitLocked(ctx, next)
	s.log.Debugf("Product %d removed from cart", productID)
	return s.cart.Clone(), nil
}

func (s *CartStore) UpdateProductAmount(ctx context.Context, req UpdateProductAmount) (entity.Cart, error) {
	ctx, span := s.tracer.Start(ctx, "CartStore.UpdateProductAmount", trace.WithAttributes(
		attribute.Int("product.id", req.ProductID),
		attribute.Int("product.amount", req.Amount),
	))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoadedLocked(ctx); err != nil {
		return nil, failSpan(span, err)
	}

	next, err := s.cart.UpdateItemAmount(req.ProductID, req.Amount)
	if err != nil {
		return nil, failSpan(span, fmt.Errorf("product %d amount %d: %w", req.ProductID, req.Amount, err))
	}

	s.commitLocked(ctx, next)
	s.log.Debugf("Product %d amount set to %d", req.ProductID, req.Amount)
	return s.cart.Clone(), nil
}

func (s *CartStore) commitLocked(ctx context.Context, next entity.Cart) {
	s.cart = next
	if s.metrics != nil {
		summary := next.Summary()
		s.metrics.CartItems.Set(float64(summary.Items))
		s.metrics.CartUnits.Set(float64(summary.Units))
	}
	for _, l := range s.listeners {
		l(ctx, next.Clone())
	}
}

// persistSnapshot is fire-and-forget: a failed write is logged and counted,
// and the in-memory cart stays committed.
func (s *CartStore) persistSnapshot(ctx context.Context, cart entity.Cart) {
	raw, err := entity.MarshalSnapshot(cart)
	if err != nil {
		s.snapshotWriteFailed(err)
		return
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.writeTimeout)
	defer cancel()

	if err := s.snapshots.Set(writeCtx, s.snapshotKey, raw); err != nil {
		s.snapshotWriteFailed(err)
	}
}

func (s *CartStore) snapshotWriteFailed(err error) {
	s.log.Errorf("Error saving cart snapshot %s: %v", s.snapshotKey, err)
	if s.metrics != nil {
		s.metrics.SnapshotWriteErrors.Inc()
	}
}

func failSpan(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func findProduct(products []entity.Product, productID int) (entity.Product, bool) {
	for _, p := range products {
		if p.ID == productID {
			return p, true
		}
	}
	return entity.Product{}, false
}
