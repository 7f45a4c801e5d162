package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/rentify/internal/apperrors"
	"github.com/example/rentify/internal/logger"
	"github.com/example/rentify/internal/metrics"
	"github.com/example/rentify/internal/models"
	"github.com/example/rentify/internal/repository"
	"github.com/example/rentify/internal/utils"
)

const (
	msgOrderNotFound   = "Order not found"
	msgCarNotAvailable = "Car Not found or not available"
)

type OrderInput struct {
	CarID       uint
	PickupDate  time.Time
	DropoffDate time.Time
}

type OrderUser struct {
	ID       uint   `json:"id"`
	FullName string `json:"full_name"`
}

type OrderCar struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type OrderView struct {
	ID           uint                `json:"id"`
	OrderStatus  models.OrderStatus  `json:"order_status"`
	PaymentState models.PaymentState `json:"payment_state"`
	PickupDate   time.Time           `json:"pickup_date"`
	DropoffDate  time.Time           `json:"dropoff_date"`
	TotalPrice   decimal.Decimal     `json:"total_price"`
	User         *OrderUser          `json:"user,omitempty"`
	Car          *OrderCar           `json:"car,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

func orderView(o *models.Order) OrderView {
	view := OrderView{
		ID:           o.ID,
		OrderStatus:  o.OrderStatus,
		PaymentState: o.PaymentState,
		PickupDate:   o.PickupDate,
		DropoffDate:  o.DropoffDate,
		TotalPrice:   o.TotalPrice,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
	if o.User != nil {
		view.User = &OrderUser{ID: o.User.ID, FullName: o.User.FullName}
	}
	if o.Car != nil {
		view.Car = &OrderCar{ID: o.Car.ID, Name: o.Car.Name}
	}
	return view
}

// OrderDeps groups the collaborators of OrderService.
type OrderDeps struct {
	Tx        repository.Transactor
	Orders    repository.OrderRepository
	Cars      repository.CarRepository
	Discounts repository.DiscountRepository
	Users     repository.UserRepository
	Refresher CarRefresher
	Mailer    Mailer
	Notifier  Notifier
	Events    EventPublisher
	Currency  *CurrencyConverter
	Log       logger.ILogger
}

type OrderService struct {
	OrderDeps
	now func() time.Time
}

func NewOrderService(deps OrderDeps) *OrderService {
	return &OrderService{OrderDeps: deps, now: time.Now}
}

// Create books a car. The availability check, price calculation, order
// insert and availability flip run in one transaction holding the car row
// lock, so two concurrent bookings cannot both succeed.
func (s *OrderService) Create(ctx context.Context, actor Actor, in OrderInput) (*OrderView, error) {
	now := s.now()
	if !NotBeforeDay(in.PickupDate, now) {
		return nil, apperrors.BadRequest("pickup_date must be today or later")
	}
	if !in.DropoffDate.After(in.PickupDate) {
		return nil, apperrors.BadRequest("dropoff_date must be after pickup_date")
	}

	interval := RentalInterval(in.PickupDate, in.DropoffDate)

	var (
		order *models.Order
		car   *models.Car
	)
	err := s.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		car, err = s.Cars.LockAvailable(ctx, in.CarID)
		if err != nil {
			return mapRepoErr(err, msgCarNotAvailable)
		}

		discount, err := s.Discounts.ActivePercentage(ctx, car.ID, now)
		if err != nil {
			return err
		}

		if interval < car.MinimumRentalPeriod {
			return apperrors.BadRequest(fmt.Sprintf("Minimum renting interval for this car is %d days", car.MinimumRentalPeriod))
		}

		order = &models.Order{
			UserID:       actor.UserID,
			CarID:        car.ID,
			OrderStatus:  models.OrderPending,
			PaymentState: models.PaymentPending,
			PickupDate:   in.PickupDate,
			DropoffDate:  in.DropoffDate,
			TotalPrice:   TotalPrice(car.RentalPrice, interval, discount),
		}
		if err := s.Orders.Create(ctx, order); err != nil {
			return err
		}

		flipped, err := s.Cars.MarkUnavailable(ctx, car.ID)
		if err != nil {
			return err
		}
		if !flipped {
			return apperrors.NotFound(msgCarNotAvailable)
		}
		return nil
	})
	if err != nil {
		if _, ok := apperrors.As(err); ok {
			return nil, err
		}
		s.Log.Error("create order failed", logger.Uint("car_id", in.CarID), logger.Error(err))
		return nil, apperrors.Internal(err)
	}

	metrics.OrdersCreated.Inc()
	s.Refresher.Refresh(ctx, car.ID)

	user := s.recipient(ctx, actor.UserID, actor)
	s.sendMail(user.Email, OrderMail{
		OrderID:        order.ID,
		UserName:       user.FullName,
		Status:         string(models.OrderPending),
		RentalInterval: interval,
		TotalPrice:     s.Currency.Format(order.TotalPrice, user.PreferredCurrency),
	})
	if err := s.Notifier.NotifyNewOrder(OrderNotification{
		OrderID:        order.ID,
		CarName:        car.Name,
		UserName:       user.FullName,
		UserEmail:      user.Email,
		RentalInterval: interval,
		TotalPrice:     order.TotalPrice.StringFixed(2),
		PickupDate:     order.PickupDate.Format(time.DateOnly),
		DropoffDate:    order.DropoffDate.Format(time.DateOnly),
	}); err != nil {
		s.Log.Warning("new order notification failed", logger.Uint("order_id", order.ID), logger.Error(err))
	}
	s.publish(ctx, EventOrderCreated, order)

	order.Car = car
	view := orderView(order)
	return &view, nil
}

func (s *OrderService) FindAll(ctx context.Context, p utils.Pagination) (Page[OrderView], error) {
	orders, total, err := s.Orders.List(ctx, p.Offset, p.Limit)
	if err != nil {
		s.Log.Error("list orders failed", logger.Error(err))
		return Page[OrderView]{}, apperrors.Internal(err)
	}
	views := make([]OrderView, 0, len(orders))
	for i := range orders {
		views = append(views, orderView(&orders[i]))
	}
	return newPage(views, total, p), nil
}

func (s *OrderService) FindAllPerUser(ctx context.Context, actor Actor) ([]OrderView, error) {
	orders, err := s.Orders.ListByUser(ctx, actor.UserID)
	if err != nil {
		s.Log.Error("list user orders failed", logger.Uint("user_id", actor.UserID), logger.Error(err))
		return nil, apperrors.Internal(err)
	}
	views := make([]OrderView, 0, len(orders))
	for i := range orders {
		views = append(views, orderView(&orders[i]))
	}
	return views, nil
}

// FindOne returns an order to its owner or an administrator.
func (s *OrderService) FindOne(ctx context.Context, actor Actor, id uint) (*OrderView, error) {
	order, err := s.Orders.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err, msgOrderNotFound)
	}
	if order.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, apperrors.Forbidden("You are not allowed to view this order.")
	}
	view := orderView(order)
	return &view, nil
}

// UpdateOrderStatus sets any non-canceled status. Completing an order frees
// its car; reviving a finished order claims the car again.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id uint, status models.OrderStatus) (*OrderView, error) {
	switch status {
	case models.OrderPending, models.OrderInProgress, models.OrderConfirmed, models.OrderCompleted:
	default:
		return nil, apperrors.BadRequest("order_status must be one of pending, in_progress, confirmed, completed")
	}

	order, err := s.Orders.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err, msgOrderNotFound)
	}

	previous := order.OrderStatus
	err = s.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.Orders.Update(ctx, id, map[string]interface{}{"order_status": status}); err != nil {
			return err
		}
		switch {
		case previous.Active() && !status.Active():
			return s.Cars.MarkAvailable(ctx, order.CarID)
		case !previous.Active() && status.Active():
			flipped, err := s.Cars.MarkUnavailable(ctx, order.CarID)
			if err != nil {
				return err
			}
			if !flipped {
				return apperrors.Conflict("Car is no longer available for this order")
			}
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.Log.Error("update order status failed", logger.Uint("order_id", id), logger.Error(err))
		}
		return nil, mapRepoErr(err, msgOrderNotFound)
	}

	order.OrderStatus = status
	if previous.Active() != status.Active() {
		s.Refresher.Refresh(ctx, order.CarID)
	}

	if order.User != nil {
		s.sendMail(order.User.Email, OrderMail{OrderID: order.ID, UserName: order.User.FullName, Status: string(status)})
	}
	s.publish(ctx, EventOrderStatusChanged, order)

	view := orderView(order)
	return &view, nil
}

func (s *OrderService) UpdatePaymentStatus(ctx context.Context, id uint, state models.PaymentState) (*OrderView, error) {
	switch state {
	case models.PaymentPending, models.PaymentFailed, models.PaymentCompleted:
	default:
		return nil, apperrors.BadRequest("payment_state must be one of pending, failed, completed")
	}

	if err := s.Orders.Update(ctx, id, map[string]interface{}{"payment_state": state}); err != nil {
		return nil, mapRepoErr(err, msgOrderNotFound)
	}

	order, err := s.Orders.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err, msgOrderNotFound)
	}
	s.publish(ctx, EventOrderStatusChanged, order)

	view := orderView(order)
	return &view, nil
}

// Cancel lets the owner or an administrator cancel an active order and
// releases the car.
func (s *OrderService) Cancel(ctx context.Context, actor Actor, id uint) error {
	order, err := s.Orders.FindByID(ctx, id)
	if err != nil {
		return mapRepoErr(err, msgOrderNotFound)
	}

	if order.UserID != actor.UserID && !actor.IsAdmin() {
		return apperrors.Forbidden("You are not allowed to cancel this order.")
	}
	if !order.OrderStatus.Active() {
		return apperrors.Conflict(fmt.Sprintf("Order is already %s", order.OrderStatus))
	}

	err = s.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.Orders.Update(ctx, id, map[string]interface{}{"order_status": models.OrderCanceled}); err != nil {
			return err
		}
		return s.Cars.MarkAvailable(ctx, order.CarID)
	})
	if err != nil {
		s.Log.Error("cancel order failed", logger.Uint("order_id", id), logger.Error(err))
		return mapRepoErr(err, msgOrderNotFound)
	}

	order.OrderStatus = models.OrderCanceled
	metrics.OrdersCanceled.Inc()
	s.Refresher.Refresh(ctx, order.CarID)

	if order.User != nil {
		s.sendMail(order.User.Email, OrderMail{OrderID: order.ID, UserName: order.User.FullName, Status: string(models.OrderCanceled)})
	}
	if err := s.Notifier.NotifyOrderCanceled(order.ID, actor.Name); err != nil {
		s.Log.Warning("cancel notification failed", logger.Uint("order_id", id), logger.Error(err))
	}
	s.publish(ctx, EventOrderCanceled, order)
	return nil
}

// Remove deletes an order, releasing its car when the order was active.
func (s *OrderService) Remove(ctx context.Context, id uint) error {
	order, err := s.Orders.FindByID(ctx, id)
	if err != nil {
		return mapRepoErr(err, msgOrderNotFound)
	}

	err = s.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.Orders.Delete(ctx, id); err != nil {
			return err
		}
		if order.OrderStatus.Active() {
			return s.Cars.MarkAvailable(ctx, order.CarID)
		}
		return nil
	})
	if err != nil {
		return mapRepoErr(err, msgOrderNotFound)
	}

	if order.OrderStatus.Active() {
		s.Refresher.Refresh(ctx, order.CarID)
	}
	s.publish(ctx, EventOrderDeleted, order)
	return nil
}

// recipient loads the mail recipient, falling back to the token identity.
func (s *OrderService) recipient(ctx context.Context, userID uint, actor Actor) *models.User {
	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		s.Log.Warning("order recipient lookup failed", logger.Uint("user_id", userID), logger.Error(err))
		return &models.User{Email: actor.Email, FullName: actor.Name, PreferredCurrency: models.CurrencyUSD}
	}
	return user
}

func (s *OrderService) sendMail(email string, info OrderMail) {
	if err := s.Mailer.SendOrderStatus(email, info); err != nil {
		metrics.MailFailures.Inc()
		s.Log.Error("order mail failed", logger.Uint("order_id", info.OrderID), logger.Error(err))
	}
}

func (s *OrderService) publish(ctx context.Context, eventType string, order *models.Order) {
	if err := s.Events.Publish(ctx, newOrderEvent(eventType, order)); err != nil {
		metrics.EventPublishErrors.Inc()
		s.Log.Warning("order event publish failed",
			logger.String("type", eventType),
			logger.Uint("order_id", order.ID),
			logger.Error(err),
		)
	}
}

// NotBeforeDay reports whether t falls on or after the calendar day of now.
// Both days are read in t's zone.
func NotBeforeDay(t, now time.Time) bool {
	return !t.Before(startOfDay(now.In(t.Location())))
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
