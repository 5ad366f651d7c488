package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/onboard-hq/onboard-server/controllers"
	"github.com/onboard-hq/onboard-server/middleware"
)

func SetupRoutes(r *gin.Engine) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/health", controllers.HealthCheck)
	r.GET("/metrics", middleware.MetricsHandler())

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", middleware.RateLimitLogin(), controllers.Register)
			auth.POST("/login", middleware.RateLimitLogin(), controllers.Login)
			auth.POST("/google/login", middleware.RateLimitLogin(), controllers.GoogleLoginHandler)
		}

		protected := api.Group("/")
		protected.Use(middleware.AuthJWT())
		{
			protected.GET("/me", controllers.Me)
		}

		api.POST("/uploads", middleware.OptionalAuth(), middleware.RateLimitUpload(), controllers.UploadFile)
		api.GET("/exports/:job_id", middleware.AuthJWT(), middleware.RequireAdmin(), controllers.GetExport)

		admin := api.Group("/admin")
		admin.Use(middleware.AuthJWT(), middleware.RequireAdmin())
		{
			admin.GET("/dashboard", controllers.GetAdminDashboard)

			admin.GET("/customers", controllers.ListCustomers)
			admin.POST("/customers", controllers.CreateCustomer)
			admin.GET("/customers/:id", controllers.GetCustomer)
			admin.PUT("/customers/:id", controllers.UpdateCustomer)
			admin.DELETE("/customers/:id", controllers.DeleteCustomer)

			admin.POST("/assignments", controllers.AssignTemplate)
			admin.GET("/assignments", controllers.ListAssignments)

			admin.GET("/templates", controllers.ListTemplates)
			admin.POST("/templates", controllers.CreateTemplate)
			admin.GET("/templates/:id", controllers.GetTemplate)
			admin.PUT("/templates/:id", controllers.UpdateTemplate)
			admin.DELETE("/templates/:id", controllers.DeleteTemplate)
			admin.PUT("/templates/:id/archive", controllers.ArchiveTemplate)
			admin.PUT("/templates/:id/restore", controllers.RestoreTemplate)
			admin.POST("/templates/:id/sections", controllers.AddSection)
			admin.PUT("/templates/:id/sections/reorder", controllers.ReorderSections)
			admin.POST("/templates/:id/export", controllers.CreateExport)

			admin.POST("/sections/:id/groups", controllers.AddGroup)
			admin.PUT("/sections/:id/groups/reorder", controllers.ReorderGroups)
			admin.POST("/groups/:id/questions", controllers.AddQuestion)
			admin.PUT("/groups/:id/questions/reorder", controllers.ReorderQuestions)
			admin.PUT("/questions/:id", controllers.UpdateQuestion)
			admin.DELETE("/questions/:id", controllers.DeleteQuestion)
		}

		fill := api.Group("/fill")
		fill.Use(middleware.AuthJWT())
		{
			fill.GET("/templates/:id", controllers.GetFilledTemplate)
			fill.PUT("/answers", controllers.UpdateAnswer)
			fill.POST("/templates/:id/submit", controllers.SubmitAssignment)
			fill.GET("/assignments", controllers.MyAssignments)

			fill.POST("/sessions", controllers.StartFillSession)
			fill.PUT("/sessions/:id/answers", controllers.SessionAnswer)
			fill.POST("/sessions/:id/next", controllers.SessionNext)
			fill.POST("/sessions/:id/previous", controllers.SessionPrevious)
			fill.POST("/sessions/:id/jump", controllers.SessionJump)
			fill.POST("/sessions/:id/submit", controllers.SessionSubmit)
			fill.DELETE("/sessions/:id", controllers.CloseFillSession)
		}

		tickets := api.Group("/tickets")
		tickets.Use(middleware.AuthJWT())
		{
			tickets.POST("", controllers.CreateTicket)
			tickets.GET("", controllers.ListTickets)
			tickets.GET("/stream", controllers.StreamTickets)
			tickets.POST("/:id/messages", controllers.PostMessage)
			tickets.PUT("/:id/read", controllers.MarkTicketRead)
			tickets.PUT("/:id/close", controllers.CloseTicket)
		}
	}
}
