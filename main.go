package main

import (
	"homeswap-server/routes"
	"homeswap-server/services"
	"homeswap-server/storage"
	"homeswap-server/utils"
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func main() {
	godotenv.Load()
	db := storage.InitializeDB()
	storage.InitializeRedis()

	swapStore := services.NewGormSwapStore(db)
	notifier := services.NewNotificationService(db)
	swapService := services.NewSwapService(swapStore, notifier)
	swapHandler := routes.NewSwapHandler(swapService)

	app := iris.New()
	app.Validator = validator.New()

	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	app.Use(iris.Compression)

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	app.Get("/api/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})

	user := app.Party("/api/user")
	{
		user.Post("/register", routes.Register)
		user.Post("/login", routes.Login)
		user.Post("/refresh", routes.RefreshTokens)
		user.Get("/{id}", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.GetUser)
		user.Get("/{id}/homes", accessTokenVerifierMiddleware, routes.GetHomesByUser)
		user.Patch("/{id}/pushtoken", accessTokenVerifierMiddleware, utils.UserIDMiddleware, routes.AlterUserPushToken)
		user.Patch("/{id}/settings/notifications", accessTokenVerifierMiddleware, utils.UserIDMiddleware, routes.AllowsNotifications)
	}

	home := app.Party("/api/home")
	{
		home.Get("/search", routes.SearchHomes)
		home.Post("/", accessTokenVerifierMiddleware, routes.CreateHome)
		home.Get("/{id}", routes.GetHome)
		home.Patch("/{id}", accessTokenVerifierMiddleware, routes.UpdateHome)
		home.Delete("/{id}", accessTokenVerifierMiddleware, routes.DeleteHome)
	}

	swap := app.Party("/api/swap", accessTokenVerifierMiddleware)
	{
		swap.Post("/bids", swapHandler.SubmitBid)
		swap.Get("/bids", swapHandler.ListBids)
		swap.Get("/matches", swapHandler.ListMatches)
		swap.Get("/matches/{id}", swapHandler.GetMatch)
		swap.Post("/matches/{id}/accept", swapHandler.AcceptMatch)
		swap.Post("/matches/{id}/reject", swapHandler.RejectMatch)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}

	log.Println("Starting server on port " + port)
	app.Listen(":" + port)
}
