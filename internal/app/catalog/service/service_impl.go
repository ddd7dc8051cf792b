package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/velmark/storefront/internal/adapters/transport/http/dto"
	customErrors "github.com/velmark/storefront/internal/domain/errors"
	"github.com/velmark/storefront/internal/domain/model"
	"github.com/velmark/storefront/internal/domain/repo"
)

const defaultPageSize = 10

type catalogService struct {
	products repo.ProductRepo
	orders   repo.OrderRepo
	v        *validator.Validate
}

// Service is the product/order surface. Product mutation is staff-only;
// order reads and deletes apply the owner-or-staff rule.
type Service interface {
	CreateProduct(ctx context.Context, user model.User, in dto.ProductCreateDTO) (model.Product, error)
	GetProduct(ctx context.Context, id uint) (model.Product, error)
	ListProducts(ctx context.Context, offset, limit int) ([]model.Product, error)
	DeleteProduct(ctx context.Context, user model.User, id uint) (model.Product, error)

	CreateOrder(ctx context.Context, user model.User, in dto.OrderCreateDTO) (model.Order, error)
	GetOrder(ctx context.Context, user model.User, id uint) (model.Order, error)
	ListOrders(ctx context.Context, user model.User, offset, limit int) ([]model.Order, error)
	DeleteOrder(ctx context.Context, user model.User, id uint) (model.Order, error)
}

func New(pr repo.ProductRepo, or repo.OrderRepo, v *validator.Validate) Service {
	return &catalogService{products: pr, orders: or, v: v}
}

func normalizePage(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	return offset, limit
}

func (c *catalogService) CreateProduct(ctx context.Context, user model.User, in dto.ProductCreateDTO) (model.Product, error) {
	if !user.IsStaff {
		return model.Product{}, customErrors.ErrForbidden
	}
	if err := c.v.Struct(in); err != nil {
		return model.Product{}, customErrors.NewInvalidArgument(err.Error())
	}

	product := model.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		IsActive:    true,
	}
	if in.IsActive != nil {
		product.IsActive = *in.IsActive
	}

	id, err := c.products.CreateProduct(ctx, product)
	if err != nil {
		return model.Product{}, customErrors.WrapInternal(err, "CreateProduct")
	}
	product.ID = id

	return product, nil
}

func (c *catalogService) GetProduct(ctx context.Context, id uint) (model.Product, error) {
	product, err := c.products.GetProductByID(ctx, id)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return model.Product{}, customErrors.ErrNotFound
	case err != nil:
		return model.Product{}, customErrors.WrapInternal(err, "GetProduct")
	}
	return product, nil
}

func (c *catalogService) ListProducts(ctx context.Context, offset, limit int) ([]model.Product, error) {
	offset, limit = normalizePage(offset, limit)
	products, err := c.products.ListProducts(ctx, offset, limit)
	if err != nil {
		return nil, customErrors.WrapInternal(err, "ListProducts")
	}
	return products, nil
}

func (c *catalogService) DeleteProduct(ctx context.Context, user model.User, id uint) (model.Product, error) {
	if !user.IsStaff {
		return model.Product{}, customErrors.ErrForbidden
	}

	product, err := c.GetProduct(ctx, id)
	if err != nil {
		return model.Product{}, err
	}

	// Dependent orders go with the product, in one transaction.
	if err := c.products.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, customErrors.ErrNotFound) {
			return model.Product{}, customErrors.ErrNotFound
		}
		return model.Product{}, customErrors.WrapInternal(err, "DeleteProduct")
	}

	return product, nil
}

func (c *catalogService) CreateOrder(ctx context.Context, user model.User, in dto.OrderCreateDTO) (model.Order, error) {
	if err := c.v.Struct(in); err != nil {
		return model.Order{}, customErrors.NewInvalidArgument(err.Error())
	}

	if _, err := c.products.GetProductByID(ctx, in.ProductID); err != nil {
		if errors.Is(err, customErrors.ErrNotFound) {
			return model.Order{}, customErrors.ErrNotFound
		}
		return model.Order{}, customErrors.WrapInternal(err, "CreateOrder")
	}

	order := model.Order{
		UserID:    user.ID,
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		Status:    in.Status,
	}
	if order.Status == "" {
		order.Status = "pending"
	}

	id, err := c.orders.CreateOrder(ctx, order)
	if err != nil {
		return model.Order{}, customErrors.WrapInternal(err, "CreateOrder")
	}
	order.ID = id

	return order, nil
}

func (c *catalogService) GetOrder(ctx context.Context, user model.User, id uint) (model.Order, error) {
	order, err := c.orders.GetOrderByID(ctx, id)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return model.Order{}, customErrors.ErrNotFound
	case err != nil:
		return model.Order{}, customErrors.WrapInternal(err, "GetOrder")
	}

	if !user.CanAccess(order.UserID) {
		return model.Order{}, customErrors.ErrForbidden
	}

	return order, nil
}

func (c *catalogService) ListOrders(ctx context.Context, user model.User, offset, limit int) ([]model.Order, error) {
	offset, limit = normalizePage(offset, limit)

	var (
		orders []model.Order
		err    error
	)
	if user.IsStaff {
		orders, err = c.orders.ListOrders(ctx, offset, limit)
	} else {
		orders, err = c.orders.ListOrdersByUser(ctx, user.ID, offset, limit)
	}
	if err != nil {
		return nil, customErrors.WrapInternal(err, "ListOrders")
	}

	return orders, nil
}

func (c *catalogService) DeleteOrder(ctx context.Context, user model.User, id uint) (model.Order, error) {
	order, err := c.GetOrder(ctx, user, id)
	if err != nil {
		return model.Order{}, err
	}

	if err := c.orders.DeleteOrder(ctx, id); err != nil {
		if errors.Is(err, customErrors.ErrNotFound) {
			return model.Order{}, customErrors.ErrNotFound
		}
		return model.Order{}, customErrors.WrapInternal(err, "DeleteOrder")
	}

	return order, nil
}
