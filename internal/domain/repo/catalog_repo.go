package repo

import (
	"context"

	"github.com/velmark/storefront/internal/domain/model"
)

type ProductRepo interface {
	CreateProduct(ctx context.Context, p model.Product) (uint, error)

	GetProductByID(ctx context.Context, id uint) (model.Product, error)

	ListProducts(ctx context.Context, offset, limit int) ([]model.Product, error)

	// DeleteProduct removes the product and its dependent orders in one
	// transaction.
	DeleteProduct(ctx context.Context, id uint) error
}

type OrderRepo interface {
	CreateOrder(ctx context.Context, o model.Order) (uint, error)

	GetOrderByID(ctx context.Context, id uint) (model.Order, error)

	ListOrders(ctx context.Context, offset, limit int) ([]model.Order, error)

	ListOrdersByUser(ctx context.Context, userID uint, offset, limit int) ([]model.Order, error)

	DeleteOrder(ctx context.Context, id uint) error
}
