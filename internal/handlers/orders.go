package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/rentify/internal/apperrors"
	"github.com/example/rentify/internal/middleware"
	"github.com/example/rentify/internal/models"
	"github.com/example/rentify/internal/services"
	"github.com/example/rentify/internal/utils"
)

type OrderHandler struct {
	orders *services.OrderService
}

func NewOrderHandler(orders *services.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

type createOrderRequest struct {
	CarID       uint   `json:"car_id" validate:"required,gt=0"`
	PickupDate  string `json:"pickup_date" validate:"required,date,notbeforetoday"`
	DropoffDate string `json:"dropoff_date" validate:"required,date"`
}

func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var req createOrderRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	pickup, _ := parseDate(req.PickupDate)
	dropoff, _ := parseDate(req.DropoffDate)

	actor, _ := middleware.CurrentActor(c)
	order, err := h.orders.Create(c.UserContext(), actor, services.OrderInput{
		CarID:       req.CarID,
		PickupDate:  pickup,
		DropoffDate: dropoff,
	})
	if err != nil {
		return err
	}
	return middleware.Created(c, "Order placed successfully.", order)
}

func (h *OrderHandler) FindAll(c *fiber.Ctx) error {
	p, ok := utils.ParseStrictPagination(c)
	if !ok {
		return apperrors.BadRequest("Invalid request params.")
	}
	page, err := h.orders.FindAll(c.UserContext(), p)
	if err != nil {
		return err
	}
	return middleware.OK(c, "Orders retrieved successfully.", page)
}

func (h *OrderHandler) FindAllPerUser(c *fiber.Ctx) error {
	actor, _ := middleware.CurrentActor(c)
	orders, err := h.orders.FindAllPerUser(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return middleware.OK(c, "Orders retrieved successfully.", orders)
}

func (h *OrderHandler) FindOne(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	actor, _ := middleware.CurrentActor(c)
	order, err := h.orders.FindOne(c.UserContext(), actor, id)
	if err != nil {
		return err
	}
	return middleware.OK(c, "Order retrieved successfully.", order)
}

type updateOrderStatusRequest struct {
	OrderStatus string `json:"order_status" validate:"required,oneof=pending in_progress confirmed completed"`
}

func (h *OrderHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req updateOrderStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	order, err := h.orders.UpdateOrderStatus(c.UserContext(), id, models.OrderStatus(req.OrderStatus))
	if err != nil {
		return err
	}
	return middleware.OK(c, "Order status updated successfully.", order)
}

type updatePaymentRequest struct {
	PaymentState string `json:"payment_state" validate:"required,oneof=pending failed completed"`
}

func (h *OrderHandler) UpdatePaymentStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req updatePaymentRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	order, err := h.orders.UpdatePaymentStatus(c.UserContext(), id, models.PaymentState(req.PaymentState))
	if err != nil {
		return err
	}
	return middleware.OK(c, "Payment status updated successfully.", order)
}

func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	actor, _ := middleware.CurrentActor(c)
	if err := h.orders.Cancel(c.UserContext(), actor, id); err != nil {
		return err
	}
	return middleware.OK(c, "Order cancelled successfully.", nil)
}

func (h *OrderHandler) Remove(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.orders.Remove(c.UserContext(), id); err != nil {
		return err
	}
	return middleware.OK(c, "Order removed successfully.", nil)
}
