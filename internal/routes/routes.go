package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/rentify/internal/handlers"
	"github.com/example/rentify/internal/middleware"
	"github.com/example/rentify/internal/models"
)

// Handlers groups the resource handlers mounted under /v1.
type Handlers struct {
	Users     *handlers.UserHandler
	Brands    *handlers.BrandHandler
	Locations *handlers.LocationHandler
	Cars      *handlers.CarHandler
	Reviews   *handlers.ReviewHandler
	Discounts *handlers.DiscountHandler
	Orders    *handlers.OrderHandler
	Contact   *handlers.ContactHandler
}

// Register wires up all HTTP routes.
func Register(app *fiber.App, h Handlers, auth middleware.Authenticator, uploadDir string) {
	app.Static("/uploads", uploadDir)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	protected := middleware.Protected(auth)
	admin := middleware.RequireRole(models.RoleAdmin)

	api := app.Group("/v1")

	// Users
	users := api.Group("/users")
	users.Post("/register", h.Users.Register)
	users.Post("/requestOTP", h.Users.RequestOTP)
	users.Post("/verifyOTP", h.Users.VerifyOTP)
	users.Post("/login", h.Users.Login)
	users.Post("/refreshToken", h.Users.RefreshToken)
	users.Get("/profile", protected, h.Users.Profile)
	users.Patch("/profile", protected, h.Users.UpdateProfile)
	users.Post("/logout", protected, h.Users.Logout)
	users.Patch("/account_disable", protected, h.Users.DisableAccount)
	users.Patch("/account_enable", protected, h.Users.EnableAccount)
	users.Patch("/password", protected, h.Users.ChangePassword)
	users.Patch("/profileImage", protected, h.Users.UpdateProfileImage)

	// Catalog
	brands := api.Group("/brands")
	brands.Get("/", h.Brands.FindAll)
	brands.Get("/:id", h.Brands.FindOne)
	brands.Post("/", protected, admin, h.Brands.Create)
	brands.Patch("/", protected, admin, h.Brands.Update)
	brands.Delete("/:id", protected, admin, h.Brands.Remove)

	locations := api.Group("/locations")
	locations.Get("/", h.Locations.FindAll)
	locations.Get("/:id", h.Locations.FindOne)
	locations.Post("/", protected, admin, h.Locations.Create)
	locations.Patch("/:id", protected, admin, h.Locations.Update)
	locations.Delete("/:id", protected, admin, h.Locations.Remove)

	cars := api.Group("/cars")
	cars.Get("/", h.Cars.FindAll)
	cars.Get("/available", h.Cars.FindAvailable)
	cars.Get("/:id", h.Cars.FindOne)
	cars.Post("/", protected, admin, h.Cars.Create)
	cars.Patch("/images/:car_id", protected, admin, h.Cars.UpdateImages)
	cars.Patch("/policies/:car_id", protected, admin, h.Cars.UpdatePolicies)
	cars.Patch("/:id", protected, admin, h.Cars.Update)
	cars.Delete("/:id", protected, admin, h.Cars.Remove)

	reviews := api.Group("/car-reviews")
	reviews.Get("/", h.Reviews.CarRating)
	reviews.Get("/:id", h.Reviews.FindOne)
	reviews.Post("/", protected, h.Reviews.Create)
	reviews.Patch("/:id", protected, h.Reviews.Update)
	reviews.Delete("/:id", protected, admin, h.Reviews.Remove)

	discounts := api.Group("/discounts")
	discounts.Get("/", h.Discounts.FindAll)
	discounts.Post("/", protected, admin, h.Discounts.Create)
	discounts.Delete("/:id", protected, admin, h.Discounts.Remove)

	// Orders
	orders := api.Group("/orders", protected)
	orders.Post("/", h.Orders.Create)
	orders.Get("/user", h.Orders.FindAllPerUser)
	orders.Patch("/cancel/:id", h.Orders.Cancel)
	orders.Get("/", admin, h.Orders.FindAll)
	orders.Get("/:id", h.Orders.FindOne)
	orders.Patch("/payment/:id", admin, h.Orders.UpdatePaymentStatus)
	orders.Patch("/:id", admin, h.Orders.UpdateOrderStatus)
	orders.Delete("/:id", admin, h.Orders.Remove)

	contact := api.Group("/contact-us", protected)
	contact.Post("/", h.Contact.Create)
	contact.Get("/", admin, h.Contact.FindAll)
	contact.Get("/get-message/:id", admin, h.Contact.FindOne)
	contact.Patch("/resolve-message/:id", admin, h.Contact.Resolve)
	contact.Delete("/:id", admin, h.Contact.Remove)
}
