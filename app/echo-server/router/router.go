package router

import (
	"silleShop/internal/middleware"
	"silleShop/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetupUserRoutes(api *echo.Group, handler *rest.UserHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	users := api.Group("/users")

	users.GET("/email-verification/:code", handler.VerifyEmail)
	users.POST("/register", handler.Register)
	users.POST("/login", handler.Login)

	users.PUT("/:id", handler.UpdateUser, authRequired, middleware.SelfOrAdmin())
	users.GET("", handler.GetAllUsers, authRequired, adminOnly)
	users.GET("/:id", handler.GetUserByID, authRequired, middleware.SelfOrAdmin())
	users.DELETE("/:id", handler.DeleteUser, authRequired, middleware.SelfOrAdmin())
}

func SetupPerfumeRoutes(api *echo.Group, handler *rest.PerfumeHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	perfumes := api.Group("/perfumes")

	perfumes.GET("", handler.GetAllPerfumes)
	perfumes.GET("/:id", handler.GetPerfumeByID)
	perfumes.POST("", handler.CreatePerfume, authRequired, adminOnly)
	perfumes.PUT("/:id", handler.UpdatePerfume, authRequired, adminOnly)
	perfumes.DELETE("/:id", handler.DeletePerfume, authRequired, adminOnly)
}

func SetupSurveyRoutes(api *echo.Group, handler *rest.SurveyHandler) {
	survey := api.Group("/survey", middleware.AuthMiddleware())
	survey.GET("/questions", handler.GetQuestions)
	survey.GET("/response", handler.GetMyResponse)
	survey.POST("/response", handler.Submit)
}

func SetupRatingRoutes(api *echo.Group, handler *rest.RatingHandler) {
	ratings := api.Group("/perfumes/:id", middleware.AuthMiddleware())
	ratings.POST("/rating", handler.Rate)
	ratings.GET("/rating", handler.GetMyRating)
	ratings.GET("/rating-stats", handler.GetStats)
}

func SetupMatchRoutes(api *echo.Group, handler *rest.MatchHandler) {
	matches := api.Group("/matches", middleware.AuthMiddleware())
	matches.GET("", handler.GetMatches)
	matches.GET("/:id", handler.GetMatch)
}
