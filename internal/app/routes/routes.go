package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/bmvt/backend/internal/app/controllers"
	"github.com/bmvt/backend/internal/app/models/dto/enums"
	"github.com/bmvt/backend/internal/middleware"
)

// Controllers groups the handlers mounted under /api.
type Controllers struct {
	Auth            *controllers.AuthController
	User            *controllers.UserController
	Pelerin         *controllers.PelerinController
	Medicale        *controllers.MedicaleController
	Flight          *controllers.FlightController
	Room            *controllers.RoomController
	Payment         *controllers.PaymentController
	Offre           *controllers.OffreController
	PelerinPaiement *controllers.PelerinPaiementController
	Chat            *controllers.ChatController
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	c Controllers,
	authMiddleware *middleware.AuthMiddleware,
	authLimiter *middleware.IPRateLimiter,
) {
	api := router.Group("/api")

	// --- Auth ---
	auth := api.Group("/auth")
	{
		limited := auth.Group("")
		if authLimiter != nil {
			limited.Use(authLimiter.RateLimit())
		}
		limited.POST("/register", c.Auth.Register)
		limited.POST("/login", c.Auth.Login)

		auth.POST("/logout", c.Auth.Logout)
		auth.GET("/me", authMiddleware.JWTAuth(), c.Auth.Me)
	}

	// --- Users: every route needs a token ---
	users := api.Group("/users")
	users.Use(authMiddleware.JWTAuth())
	{
		users.GET("", authMiddleware.RoleRequired(enums.RoleAgent, enums.RoleAdmin, enums.RoleSuperviseur), c.User.ListUsers)
		users.POST("", authMiddleware.RoleRequired(enums.RoleAdmin), c.User.CreateUser)
		users.GET("/:id", c.User.GetUserByID)
		users.PUT("/:id", authMiddleware.RoleRequired(enums.RoleAdmin, enums.RoleSuperviseur), c.User.UpdateUser)
		users.PUT("/:id/password", c.User.ChangePassword)
		users.DELETE("/:id", authMiddleware.RoleRequired(enums.RoleAdmin), c.User.DeleteUser)
	}

	// The back-office resources attach the caller when a token is sent,
	// so author fields default to the signed-in user.
	open := api.Group("")
	open.Use(authMiddleware.OptionalAuth())

	pelerins := open.Group("/pelerins")
	{
		pelerins.GET("", c.Pelerin.ListPelerins)
		pelerins.GET("/by-passport", c.Pelerin.SearchByPassport)
		pelerins.GET("/:id", c.Pelerin.GetPelerin)
		pelerins.POST("", c.Pelerin.CreatePelerin)
		pelerins.PUT("/:id", c.Pelerin.UpdatePelerin)
		pelerins.DELETE("/:id", c.Pelerin.DeletePelerin)
	}

	medicales := open.Group("/medicales")
	{
		medicales.GET("", c.Medicale.ListMedicales)
		medicales.GET("/by-passport", c.Medicale.ListByPassport)
		medicales.GET("/:id", c.Medicale.GetMedicale)
		medicales.POST("", c.Medicale.CreateMedicale)
		medicales.PUT("/:id", c.Medicale.UpdateMedicale)
		medicales.DELETE("/:id", c.Medicale.DeleteMedicale)
	}

	vols := open.Group("/vols")
	{
		vols.GET("", c.Flight.ListFlights)
		vols.GET("/:id", c.Flight.GetFlight)
		vols.POST("", c.Flight.CreateFlight)
		vols.PUT("/:id", c.Flight.UpdateFlight)
		vols.DELETE("/:id", c.Flight.DeleteFlight)
		vols.POST("/:id/passagers", c.Flight.AddPassenger)
		vols.DELETE("/:id/passagers/:pid", c.Flight.RemovePassenger)
		vols.GET("/:id/export.csv", c.Flight.ExportPassengers)
	}

	chambres := open.Group("/chambres")
	{
		chambres.GET("", c.Room.ListRooms)
		chambres.GET("/:id", c.Room.GetRoom)
		chambres.POST("", c.Room.CreateRoom)
		chambres.PUT("/:id", c.Room.UpdateRoom)
		chambres.DELETE("/:id", c.Room.DeleteRoom)
		chambres.POST("/:id/occupants", c.Room.AddOccupant)
		chambres.DELETE("/:id/occupants/:oid", c.Room.RemoveOccupant)
	}

	paiements := open.Group("/paiements")
	{
		paiements.GET("", c.Payment.ListPayments)
		paiements.POST("", c.Payment.CreatePayment)
		// Static segment registered before /:id.
		paiements.GET("/versements", c.Payment.ListVersements)
		paiements.POST("/versements", c.Payment.CreateVersement)
		paiements.GET("/:id", c.Payment.GetPayment)
		paiements.DELETE("/:id",
			authMiddleware.JWTAuth(),
			authMiddleware.RoleRequired(enums.RoleAdmin, enums.RoleSuperviseur),
			c.Payment.DeletePayment)
	}

	versements := open.Group("/versements")
	{
		versements.GET("", c.Payment.ListVersements)
		versements.POST("", c.Payment.CreateVersement)
	}

	offres := open.Group("/offres")
	{
		offres.GET("", c.Offre.ListOffres)
		offres.GET("/:id", c.Offre.GetOffre)
		offres.POST("", c.Offre.CreateOffre)
		offres.PUT("/:id", c.Offre.UpdateOffre)
		offres.DELETE("/:id", c.Offre.DeleteOffre)
	}

	voyages := open.Group("/voyages")
	{
		voyages.GET("", c.Offre.ListVoyages)
		voyages.GET("/:id", c.Offre.GetVoyage)
		voyages.POST("", c.Offre.CreateVoyage)
		voyages.PUT("/:id", c.Offre.UpdateVoyage)
		voyages.DELETE("/:id", c.Offre.DeleteVoyage)
	}

	pp := open.Group("/pelerinspaiement")
	{
		pp.GET("", c.PelerinPaiement.List)
		pp.GET("/by-passport", c.PelerinPaiement.GetByPassport)
	}

	chat := open.Group("/chat")
	{
		chat.GET("/channels", c.Chat.Channels)
		chat.GET("/stream", c.Chat.Stream)
		chat.GET("/messages", c.Chat.ListMessages)
		chat.GET("/messages/:id", c.Chat.GetMessage)
		chat.POST("/messages", c.Chat.CreateMessage)
		chat.PUT("/messages/:id", c.Chat.UpdateMessage)
		chat.DELETE("/messages/:id", c.Chat.DeleteMessage)
	}
}
