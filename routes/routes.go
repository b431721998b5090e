package routes

import (
	"mandi/auth"
	"mandi/cart"
	"mandi/live"
	"mandi/middleware"
	"mandi/notify"
	"mandi/orders"
	"mandi/pay"
	"mandi/products"
	"mandi/ratelim"
	"mandi/subs"

	"github.com/julienschmidt/httprouter"
)

func AddAuthRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/auth/register", rl.Limit(auth.Register))
	router.POST("/api/auth/login", rl.Limit(auth.Login))
	router.POST("/api/auth/logout", middleware.Authenticate(auth.Logout))
}

func AddProductRoutes(router *httprouter.Router) {
	router.GET("/api/products", products.GetProducts)
	router.GET("/api/products/:productid", products.GetProduct)
	router.POST("/api/products", middleware.Authenticate(products.CreateListing))
	router.PUT("/api/products/:productid", middleware.Authenticate(products.UpdateListing))
}

func AddCartRoutes(router *httprouter.Router) {
	router.GET("/api/cart", middleware.Authenticate(cart.GetCart))
	router.POST("/api/cart", middleware.Authenticate(cart.AddToCart))
	router.DELETE("/api/cart/:productid", middleware.Authenticate(cart.RemoveFromCart))
}

func AddOrderRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/checkout", rl.Limit(middleware.Authenticate(orders.Checkout)))
	// httprouter cannot mix static and param children under /api/orders,
	// so the list views get their own prefixes.
	router.GET("/api/myorders", middleware.Authenticate(orders.GetMyOrders))
	router.GET("/api/incomingorders", middleware.Authenticate(orders.GetIncomingOrders))
	router.GET("/api/orders/:orderid", middleware.Authenticate(orders.GetOrder))
	router.POST("/api/orders/:orderid/transition", middleware.Authenticate(orders.TransitionOrder))
	router.GET("/api/orders/:orderid/receipt", middleware.Authenticate(orders.DownloadReceipt))
	router.POST("/api/orders/:orderid/confirm-payment", middleware.Authenticate(pay.ConfirmPayment))
	router.GET("/api/orders/:orderid/upiqr", middleware.Authenticate(pay.GetUPIQR))
}

func AddSubscriptionRoutes(router *httprouter.Router) {
	router.POST("/api/subscriptions", middleware.Authenticate(subs.Subscribe))
	router.GET("/api/subscriptions/mine", middleware.Authenticate(subs.GetMySubscriptions))
}

func AddNotificationRoutes(router *httprouter.Router, hub *live.Hub) {
	router.GET("/api/notifications", middleware.Authenticate(notify.GetNotifications))
	router.PUT("/api/notifications/:notifid/read", middleware.Authenticate(notify.MarkNotificationRead))
	router.GET("/ws/notifications", live.StreamHandler(hub))
}
