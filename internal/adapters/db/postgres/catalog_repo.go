package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	customErrors "github.com/velmark/storefront/internal/domain/errors"
	"github.com/velmark/storefront/internal/domain/model"
)

type ProductRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

func (p *ProductRepo) CreateProduct(ctx context.Context, product model.Product) (uint, error) {
	res := p.db.WithContext(ctx).Create(&product)
	if err := res.Error; err != nil {
		return 0, customErrors.WrapInternal(err, "CreateProduct")
	}
	return product.ID, nil
}

func (p *ProductRepo) GetProductByID(ctx context.Context, id uint) (model.Product, error) {
	var product model.Product
	res := p.db.WithContext(ctx).Where("id = ?", id).First(&product)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.Product{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.Product{}, customErrors.WrapInternal(err, "GetProductByID")
	}

	return product, nil
}

func (p *ProductRepo) ListProducts(ctx context.Context, offset, limit int) ([]model.Product, error) {
	var products []model.Product
	res := p.db.WithContext(ctx).Order("id").Offset(offset).Limit(limit).Find(&products)
	if err := res.Error; err != nil {
		return nil, customErrors.WrapInternal(err, "ListProducts")
	}

	return products, nil
}

// DeleteProduct removes the product together with its orders; either
// both go or neither does.
func (p *ProductRepo) DeleteProduct(ctx context.Context, id uint) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&model.Order{}).Error; err != nil {
			return customErrors.WrapInternal(err, "DeleteProduct")
		}

		res := tx.Delete(&model.Product{}, id)
		if err := res.Error; err != nil {
			return customErrors.WrapInternal(err, "DeleteProduct")
		}
		if res.RowsAffected == 0 {
			return customErrors.ErrNotFound
		}
		return nil
	})
}

type OrderRepo struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

func (o *OrderRepo) CreateOrder(ctx context.Context, order model.Order) (uint, error) {
	res := o.db.WithContext(ctx).Create(&order)
	if err := res.Error; err != nil {
		return 0, customErrors.WrapInternal(err, "CreateOrder")
	}
	return order.ID, nil
}

func (o *OrderRepo) GetOrderByID(ctx context.Context, id uint) (model.Order, error) {
	var order model.Order
	res := o.db.WithContext(ctx).Where("id = ?", id).First(&order)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.Order{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.Order{}, customErrors.WrapInternal(err, "GetOrderByID")
	}

	return order, nil
}

func (o *OrderRepo) ListOrders(ctx context.Context, offset, limit int) ([]model.Order, error) {
	var orders []model.Order
	res := o.db.WithContext(ctx).Order("id").Offset(offset).Limit(limit).Find(&orders)
	if err := res.Error; err != nil {
		return nil, customErrors.WrapInternal(err, "ListOrders")
	}

	return orders, nil
}

func (o *OrderRepo) ListOrdersByUser(ctx context.Context, userID uint, offset, limit int) ([]model.Order, error) {
	var orders []model.Order
	res := o.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id").Offset(offset).Limit(limit).
		Find(&orders)
	if err := res.Error; err != nil {
		return nil, customErrors.WrapInternal(err, "ListOrdersByUser")
	}

	return orders, nil
}

func (o *OrderRepo) DeleteOrder(ctx context.Context, id uint) error {
	res := o.db.WithContext(ctx).Delete(&model.Order{}, id)
	if err := res.Error; err != nil {
		return customErrors.WrapInternal(err, "DeleteOrder")
	}
	if res.RowsAffected == 0 {
		return customErrors.ErrNotFound
	}

	return nil
}
