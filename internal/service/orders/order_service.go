package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Domenick1991/cinemabooking/internal/domain"
	"github.com/Domenick1991/cinemabooking/internal/kafka"
	"github.com/Domenick1991/cinemabooking/internal/logger"
	"github.com/Domenick1991/cinemabooking/internal/repository"
	"github.com/Domenick1991/cinemabooking/internal/validation"
)

type OrderUseCase interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, status string) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	Delete(ctx context.Context, id int64) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type OrderItemInput struct {
	FoodID   int64 `json:"food_id" validate:"gt=0"`
	Quantity int   `json:"quantity" validate:"gt=0"`
}

type CreateOrderInput struct {
	CustomerName string           `json:"customer_name" validate:"required"`
	Email        string           `json:"email" validate:"required,email"`
	BookingToken string           `json:"booking_token"`
	Items        []OrderItemInput `json:"items" validate:"required,min=1,dive"`
}

type OrderService struct {
	orders             repository.OrderRepository
	foods              repository.FoodRepository
	bookings           repository.BookingRepository
	producer           Producer
	orderTopic         string
	notificationsTopic string
}

type OrderServiceOption func(*OrderService)

func WithNotificationsTopic(topic string) OrderServiceOption {
	return func(s *OrderService) {
		s.notificationsTopic = topic
	}
}

func NewOrderService(
	orders repository.OrderRepository,
	foods repository.FoodRepository,
	bookings repository.BookingRepository,
	producer Producer,
	orderTopic string,
	opts ...OrderServiceOption,
) *OrderService {
	s := &OrderService{
		orders:     orders,
		foods:      foods,
		bookings:   bookings,
		producer:   producer,
		orderTopic: orderTopic,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error) {
	input.BookingToken = strings.TrimSpace(input.BookingToken)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	if input.BookingToken != "" {
		if _, err := s.bookings.GetByToken(ctx, input.BookingToken); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("%w: unknown booking token", domain.ErrValidation)
			}
			return nil, err
		}
	}

	ids := make([]int64, 0, len(input.Items))
	for _, it := range input.Items {
		ids = append(ids, it.FoodID)
	}
	foods, err := s.foods.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]domain.Food, len(foods))
	for _, f := range foods {
		byID[f.ID] = f
	}

	order := &domain.Order{
		CustomerName: input.CustomerName,
		Email:        input.Email,
		BookingToken: input.BookingToken,
		Status:       domain.OrderStatusPending,
		Items:        make([]domain.OrderItem, 0, len(input.Items)),
	}
	for _, it := range input.Items {
		food, ok := byID[it.FoodID]
		if !ok {
			return nil, fmt.Errorf("%w: food %d does not exist", domain.ErrValidation, it.FoodID)
		}
		if !food.Available {
			return nil, fmt.Errorf("%w: %s is not available", domain.ErrValidation, food.Name)
		}
		order.Items = append(order.Items, domain.OrderItem{
			FoodID:         food.ID,
			Name:           food.Name,
			Quantity:       it.Quantity,
			UnitPriceCents: food.PriceCents,
		})
	}
	order.TotalCents = order.Total()

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}
	if err := s.publish(ctx, "order_created", order); err != nil {
		logger.Warn("publish order_created", "order_id", order.ID, "err", err)
	}
	return order, nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, id int64, raw string) (*domain.Order, error) {
	next := domain.OrderStatus(strings.ToUpper(strings.TrimSpace(raw)))

	current, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransition(next) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, current.Status, next)
	}

	updated, err := s.orders.UpdateStatus(ctx, id, next)
	if err != nil {
		return nil, err
	}
	eventType := "order_" + strings.ToLower(string(next))
	if err := s.publish(ctx, eventType, updated); err != nil {
		logger.Warn("publish "+eventType, "order_id", updated.ID, "err", err)
	}
	return updated, nil
}

func (s *OrderService) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	return s.orders.GetByID(ctx, id)
}

func (s *OrderService) List(ctx context.Context) ([]domain.Order, error) {
	return s.orders.List(ctx)
}

func (s *OrderService) Delete(ctx context.Context, id int64) error {
	return s.orders.Delete(ctx, id)
}

func (s *OrderService) publish(ctx context.Context, eventType string, order *domain.Order) error {
	if s.producer == nil || s.orderTopic == "" {
		return nil
	}
	key := fmt.Sprintf("order-%d", order.ID)
	event := kafka.OrderEvent{
		Type:         eventType,
		OrderID:      order.ID,
		CustomerName: order.CustomerName,
		Email:        order.Email,
		Status:       string(order.Status),
		TotalCents:   order.TotalCents,
	}
	if err := s.producer.Publish(ctx, s.orderTopic, key, event); err != nil {
		return err
	}
	if s.notificationsTopic != "" {
		return s.producer.Publish(ctx, s.notificationsTopic, key, event)
	}
	return nil
}

var _ OrderUseCase = (*OrderService)(nil)
