package repository

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/domain/entity"
)

type ProductCatalog interface {
	ListProducts(ctx context.Context) ([]entity.Product, error)
}

type StockReader interface {
	GetStock(ctx context.Context, productID int) (*entity.Stock, error)
}
