package http

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/mishmeshmosh/backend/internal/config"
	"github.com/mishmeshmosh/backend/internal/http/handlers"
	"github.com/mishmeshmosh/backend/internal/middleware"
	"github.com/mishmeshmosh/backend/internal/rbac"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	campaignHandler *handlers.CampaignHandler,
	deedHandler *handlers.DeedHandler,
	offerHandler *handlers.OfferHandler,
	assignmentHandler *handlers.AssignmentHandler,
	disputeHandler *handlers.DisputeHandler,
	wsHub *handlers.WSHub,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	// Auth (public)
	api.Post("/auth/token", authHandler.Token)

	api.Use(middleware.RateLimitMiddleware(rdb, 100, time.Minute))

	// Deed verification is public: the verify_url embedded in every document
	// must work without a session.
	api.Get("/deeds/:id/verify", deedHandler.VerifyDeed)

	// Protected endpoints
	protected := api.Group("", middleware.AuthMiddleware(cfg, log))

	// User
	protected.Get("/me", userHandler.GetMe)
	protected.Post("/me/ping", userHandler.Ping)

	// Campaigns
	protected.Post("/campaigns", campaignHandler.CreateCampaign)
	protected.Get("/campaigns", campaignHandler.ListCampaigns)
	protected.Get("/campaigns/:id", campaignHandler.GetCampaign)
	protected.Post("/campaigns/:id/publish", campaignHandler.PublishCampaign)
	protected.Post("/campaigns/:id/items", campaignHandler.AddItem)
	protected.Get("/campaigns/:id/items", campaignHandler.ListItems)

	// Offers (supplier side + owner comparison/selection)
	protected.Post("/offers", offerHandler.SubmitOffer)
	protected.Get("/offers", offerHandler.ListOffers)
	protected.Get("/offers/:id", offerHandler.GetOffer)
	protected.Post("/offers/:id/sign", offerHandler.SignOffer)
	protected.Get("/campaigns/:id/offers", offerHandler.ListCampaignOffers)
	protected.Post("/campaigns/:id/offers/:offerId/select", offerHandler.SelectOffer)

	// Deeds
	protected.Post("/deeds/need", deedHandler.CreateNeedDeed)
	protected.Get("/deeds", deedHandler.ListDeeds)
	protected.Get("/deeds/:id", deedHandler.GetDeed)
	protected.Get("/deeds/:id/html", deedHandler.GetDeedHTML)
	protected.Get("/deeds/:id/signers", deedHandler.ListSigners)
	protected.Post("/deeds/:id/sign", deedHandler.SignDeed)
	protected.Get("/deeds/:id/events", deedHandler.GetDeedEvents)
	protected.Post("/deeds/:id/status", deedHandler.UpdateDeedStatus)

	// Assignments
	protected.Post("/assignments", assignmentHandler.CreateAssignment)
	protected.Get("/assignments/:id", assignmentHandler.GetAssignment)

	// Disputes
	protected.Post("/disputes", disputeHandler.OpenDispute)
	protected.Get("/disputes", disputeHandler.ListDisputes)
	protected.Get("/disputes/:id", disputeHandler.GetDispute)

	staff := protected.Group("", middleware.StaffMiddleware())
	staff.Post("/disputes/:id/review", middleware.RequirePermission(rbac.PermReviewDispute), disputeHandler.ReviewDispute)
	staff.Post("/disputes/:id/resolve", middleware.RequirePermission(rbac.PermResolveDispute), disputeHandler.ResolveDispute)

	// WebSocket
	app.Use("/ws", handlers.WSUpgradeMiddleware())
	app.Get("/ws", websocket.New(wsHub.HandleWS))
}
