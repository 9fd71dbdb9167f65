package main

import (
	"html/template"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"

	"ghardwar-web/api"
	"ghardwar-web/chat"
	"ghardwar-web/config"
	"ghardwar-web/routes"
	"ghardwar-web/services"
	"ghardwar-web/session"
	"ghardwar-web/storage"
	"ghardwar-web/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := config.NewLogger(cfg.Env)
	defer logger.Sync()

	redisClient := storage.InitializeRedis()

	// Server-rendered fetches go to the internal URL when one is set.
	apiClient := api.NewClient(cfg.APIBase(false), logger)
	prefetcher := api.NewPrefetcher(cfg.APIBase(true), redisClient, logger)

	sessionStore := session.NewRedisStore(redisClient, time.Duration(cfg.SessionTTLHours)*time.Hour)
	sessions := session.NewManager(apiClient, sessionStore, logger)

	hub := chat.NewHub(cfg.SocketURL, apiClient, chat.Config{}, logger)
	hub.Bind(sessions)
	defer hub.Shutdown()

	metaService := services.NewMetaService("Ghardwar", "https://ghardwar.in")

	routes.Configure(cfg, apiClient, prefetcher, sessions, hub, metaService, logger)

	app := iris.New()
	app.Validator = validator.New()
	app.Use(iris.Compression)
	app.Use(routes.SessionMiddleware)

	tmpl := iris.HTML("./views", ".html").Layout("layouts/main.html").Reload(cfg.Env != "production")
	tmpl.AddFunc("safeHTML", func(s string) template.HTML { return template.HTML(s) })
	tmpl.AddFunc("displayPhone", utils.DisplayPhoneNumber)
	app.RegisterView(tmpl)
	app.HandleDir("/static", iris.Dir("./static"))

	app.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})

	// Public pages
	app.Get("/", routes.Home)
	app.Get("/properties", routes.ListProperties)
	app.Get("/properties/{id:uint}", routes.PropertyDetail)
	app.Get("/blog", routes.BlogList)
	app.Get("/blog/{slug:string}", routes.BlogDetail)
	app.Get("/terms", routes.Terms)
	app.Get("/privacy", routes.Privacy)
	app.Get("/why-us", routes.WhyUs)
	app.Get("/contact", routes.ContactPage)
	app.Post("/contact", routes.SubmitContact)

	// Auth flows
	auth := app.Party("/")
	{
		auth.Get("/login", routes.LoginPage)
		auth.Post("/login", routes.Login)
		auth.Get("/login/mfa", routes.MFAPage)
		auth.Post("/login/mfa", routes.VerifyMFA)
		auth.Get("/login/change-password", routes.ForcedPasswordPage)
		auth.Post("/login/change-password", routes.CompleteForcedPassword)
		auth.Post("/login/cancel", routes.CancelPending)
		auth.Post("/logout", routes.Logout)
		auth.Get("/register", routes.RegisterPage)
		auth.Post("/register/buyer", routes.RegisterBuyer)
		auth.Post("/register/owner", routes.RegisterOwner)
		auth.Get("/register/verify", routes.VerifyOTPPage)
		auth.Post("/register/verify", routes.VerifyOTP)
		auth.Post("/register/resend-otp", routes.ResendOTP)
		auth.Get("/forgot-password", routes.ForgotPasswordPage)
		auth.Post("/forgot-password", routes.ForgotPassword)
		auth.Get("/reset-password", routes.ResetPasswordPage)
		auth.Post("/reset-password", routes.ResetPassword)
	}

	// Authenticated surface
	account := app.Party("/", routes.RequireAuth)
	{
		account.Get("/profile", routes.ProfilePage)
		account.Post("/profile", routes.UpdateProfile)
		account.Post("/profile/change-password", routes.ChangePassword)
		account.Get("/properties/saved", routes.SavedProperties)
		account.Post("/properties/{id:uint}/interest", routes.ExpressInterest)
		account.Post("/properties/{id:uint}/interest/withdraw", routes.WithdrawInterest)
		account.Post("/properties/{id:uint}/report", routes.ReportProperty)
	}

	// Agreements are usable anonymously
	app.Get("/agreements", routes.AgreementPage)
	app.Post("/agreements", routes.GenerateAgreement)

	// Chat widget
	chatParty := app.Party("/chat", routes.RequireAuth)
	{
		chatParty.Get("/state", routes.ChatState)
		chatParty.Get("/conversations", routes.ChatConversations)
		chatParty.Post("/conversations/start", routes.StartChat)
		chatParty.Get("/conversations/{id:uint}/messages", routes.OpenChatConversation)
		chatParty.Post("/messages", routes.SendChatMessage)
		chatParty.Post("/messages/report", routes.ReportChatMessage)
		chatParty.Post("/typing", routes.ChatTyping)
		chatParty.Get("/ws", routes.ChatSocket)
	}

	addr := "0.0.0.0:" + cfg.Port
	logger.Sugar().Infof("server starting on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
