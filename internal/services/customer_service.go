package services

import (
	"context"

	"rental-backend/internal/apperrors"
	"rental-backend/internal/models"
	"rental-backend/internal/repositories"
)

type CustomerService struct {
	Repo      *repositories.CustomerRepository
	OrderRepo *repositories.OrderRepository
}

func NewCustomerService(repo *repositories.CustomerRepository, orderRepo *repositories.OrderRepository) *CustomerService {
	return &CustomerService{Repo: repo, OrderRepo: orderRepo}
}

func (s *CustomerService) CreateCustomer(ctx context.Context, req *models.CreateCustomerRequest) (*models.Customer, error) {
	if req.Name == "" || req.Phone == "" {
		return nil, apperrors.Validation("customer name and phone are required")
	}
	if existing, _ := s.Repo.GetByPhone(ctx, req.Phone); existing != nil {
		return nil, apperrors.Validation("customer with phone %s already exists", req.Phone)
	}

	customer := &models.Customer{
		Name:           req.Name,
		Phone:          req.Phone,
		SecondaryPhone: req.SecondaryPhone,
		Email:          req.Email,
		Address:        req.Address,
	}
	if err := s.Repo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *CustomerService) GetCustomer(ctx context.Context, id int) (*models.Customer, error) {
	return s.Repo.Get(ctx, id)
}

func (s *CustomerService) ListCustomers(ctx context.Context) ([]*models.Customer, error) {
	return s.Repo.List(ctx)
}

// SearchCustomers matches customers by name or phone fragment.
func (s *CustomerService) SearchCustomers(ctx context.Context, query string) ([]*models.Customer, error) {
	if query == "" {
		return s.Repo.List(ctx)
	}
	return s.Repo.Search(ctx, query)
}

func (s *CustomerService) UpdateCustomer(ctx context.Context, id int, req *models.UpdateCustomerRequest) (*models.Customer, error) {
	customer, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != "" {
		customer.Name = req.Name
	}
	if req.Phone != "" && req.Phone != customer.Phone {
		if existing, _ := s.Repo.GetByPhone(ctx, req.Phone); existing != nil {
			return nil, apperrors.Validation("customer with phone %s already exists", req.Phone)
		}
		customer.Phone = req.Phone
	}
	customer.SecondaryPhone = req.SecondaryPhone
	customer.Email = req.Email
	customer.Address = req.Address

	if err := s.Repo.Update(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *CustomerService) DeleteCustomer(ctx context.Context, id int) error {
	orders, err := s.OrderRepo.ListByCustomer(ctx, id)
	if err != nil {
		return err
	}
	if len(orders) > 0 {
		return apperrors.Validation("customer has %d orders and cannot be deleted", len(orders))
	}
	return s.Repo.Delete(ctx, id)
}

// CustomerOrders returns a customer's order history, newest first.
func (s *CustomerService) CustomerOrders(ctx context.Context, id int) ([]*models.OrderSummary, error) {
	if _, err := s.Repo.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.OrderRepo.ListByCustomer(ctx, id)
}
