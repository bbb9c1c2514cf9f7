package service

import (
	"context"
	"testing"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/adapter/memory"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/repository"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, seed entity.Cart) (CartProvider, *MockProductCatalog, *MockNotifier, *metrics.MetricsManager) {
	t.Helper()
	catalog := new(MockProductCatalog)
	notifier := new(MockNotifier)
	snapshots := memory.NewSnapshotStore()
	if seed != nil {
		seedSnapshot(t, snapshots, seed)
	}
	store, m := newTestStore(catalog, snapshots)
	require.NoError(t, store.Load(context.Background()))
	return NewCartProvider(store, notifier, logger.NewNopLogger(), m), catalog, notifier, m
}

func TestCartProvider_AddProduct_Success(t *testing.T) {
	provider, catalog, notifier, m := newTestProvider(t, nil)
	catalog.On("ListProducts", mock.Anything).Return(testCatalog, nil).Once()

	provider.AddProduct(context.Background(), shoe.ID)

	assert.Equal(t, entity.Cart{{Product: shoe, Amount: 1}}, provider.Cart())
	notifier.AssertNotCalled(t, "Error", mock.Anything, mock.Anything)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CartOperationsTotal.WithLabelValues(opAddProduct, metrics.OutcomeSuccess)))
}

func TestCartProvider_AddProduct_NotFoundNotifiesOnce(t *testing.T) {
	provider, catalog, notifier, m := newTestProvider(t, entity.Cart{{Product: sneaker, Amount: 2}})
	catalog.On("ListProducts", mock.Anything).Return(testCatalog, nil).Once()
	notifier.On("Error", mock.Anything, MsgAddProductFailed).Once()

	provider.AddProduct(context.Background(), 404)

	assert.Equal(t, entity.Cart{{Product: sneaker, Amount: 2}}, provider.Cart())
	notifier.AssertExpectations(t)
	notifier.AssertNumberOfCalls(t, "Error", 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CartOperationsTotal.WithLabelValues(opAddProduct, metrics.OutcomeFailure)))
}

func TestCartProvider_AddProduct_CatalogDownUsesSameMessage(t *testing.T) {
	provider, catalog, notifier, _ := newTestProvider(t, nil)
	catalog.On("ListProducts", mock.Anything).Return(nil, repository.ErrCatalogFailed).Once()
	notifier.On("Error", mock.Anything, MsgAddProductFailed).Once()

	provider.AddProduct(context.Background(), shoe.ID)

	assert.Empty(t, provider.Cart())
	notifier.AssertExpectations(t)
}

func TestCartProvider_RemoveProduct(t *testing.T) {
	provider, _, notifier, _ := newTestProvider(t, entity.Cart{{Product: shoe, Amount: 2}})

	provider.RemoveProduct(context.Background(), shoe.ID)

	assert.Empty(t, provider.Cart())
	notifier.AssertNotCalled(t, "Error", mock.Anything, mock.Anything)
}

func TestCartProvider_RemoveProduct_EmptyCartNotifies(t *testing.T) {
	provider, _, notifier, _ := newTestProvider(t, nil)
	notifier.On("Error", mock.Anything, MsgRemoveProductFailed).Once()

	provider.RemoveProduct(context.Background(), 99)

	assert.Empty(t, provider.Cart())
	notifier.AssertExpectations(t)
	notifier.AssertNumberOfCalls(t, "Error", 1)
}

func TestCartProvider_UpdateProductAmount(t *testing.T) {
	provider, _, notifier, _ := newTestProvider(t, entity.Cart{{Product: shoe, Amount: 1}, {Product: sandal, Amount: 1}})

	provider.UpdateProductAmount(context.Background(), UpdateProductAmount{ProductID: sandal.ID, Amount: 3})

	assert.Equal(t, entity.Cart{{Product: shoe, Amount: 1}, {Product: sandal, Amount: 3}}, provider.Cart())
	assert.Equal(t, entity.CartSummary{Items: 2, Units: 4, TotalPrice: shoe.Price + 3*sandal.Price}, provider.Summary())
	notifier.AssertNotCalled(t, "Error", mock.Anything, mock.Anything)
}

func TestCartProvider_UpdateProductAmount_Failures(t *testing.T) {
	provider, _, notifier, _ := newTestProvider(t, entity.Cart{{Product: shoe, Amount: 1}})
	notifier.On("Error", mock.Anything, MsgUpdateAmountFailed).Twice()

	provider.UpdateProductAmount(context.Background(), UpdateProductAmount{ProductID: 77, Amount: 2})
	provider.UpdateProductAmount(context.Background(), UpdateProductAmount{ProductID: shoe.ID, Amount: 0})

	assert.Equal(t, entity.Cart{{Product: shoe, Amount: 1}}, provider.Cart())
	notifier.AssertExpectations(t)
}
