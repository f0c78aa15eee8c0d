package router

import (
	"fmt"
	"net"
	"net/http"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"github.com/yukikurage/assessment-api/internal/access"
	"github.com/yukikurage/assessment-api/internal/auth"
	"github.com/yukikurage/assessment-api/internal/config"
	"github.com/yukikurage/assessment-api/internal/constants"
	apierrors "github.com/yukikurage/assessment-api/internal/errors"
	"github.com/yukikurage/assessment-api/internal/handlers"
	"github.com/yukikurage/assessment-api/internal/middleware"
	"github.com/yukikurage/assessment-api/internal/repository"
	"github.com/yukikurage/assessment-api/internal/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func keyFunc(c *gin.Context) string {
	return c.ClientIP()
}

func errorHandler(c *gin.Context, info ratelimit.Info) {
	c.Header("Retry-After", fmt.Sprintf("%.0f", time.Until(info.ResetTime).Seconds()))
	apierrors.TooManyRequests(c, "Too many requests. Try again later.")
}

// newSessionStore uses redis when configured and signed cookies otherwise.
func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	secret := []byte(cfg.Server.SessionSecret)

	var store sessions.Store
	if cfg.Redis.Host != "" {
		rs, err := redisStore.NewStore(
			10,    // Redis pool size
			"tcp", // network type
			net.JoinHostPort(cfg.Redis.Host, cfg.Redis.Port),
			"", // password (empty = no password)
			secret,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis session store: %w", err)
		}
		store = rs
	} else {
		store = cookie.NewStore(secret)
	}

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   cfg.Server.GinMode == gin.ReleaseMode,
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}

// Setup builds the engine with every repository, service and handler wired against db.
func Setup(cfg *config.Config, db *gorm.DB, log *zap.Logger) (*gin.Engine, error) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		IsDevelopment:      cfg.Server.GinMode != gin.ReleaseMode,
	})
	router.Use(func(c *gin.Context) {
		if err := secureMiddleware.Process(c.Writer, c.Request); err != nil {
			c.Abort()
			return
		}
	})

	store, err := newSessionStore(cfg)
	if err != nil {
		return nil, err
	}
	router.Use(sessions.Sessions(constants.SessionName, store))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	bankRepo := repository.NewQuestionBankRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	responseRepo := repository.NewResponseRepository(db)
	linkStore := repository.NewAccessLinkStore(db)
	checker := access.NewChecker(linkStore)

	// Services
	tokens := auth.NewTokenService(cfg.Auth)
	authService := services.NewAuthService(userRepo, orgRepo)
	orgService := services.NewOrganizationService(orgRepo, userRepo)
	questionService := services.NewQuestionService(bankRepo, orgRepo, checker, log)
	templateService := services.NewTemplateService(templateRepo, sectionRepo, bankRepo, orgRepo, checker, log)
	sessionService := services.NewSessionService(sessionRepo, templateRepo, orgRepo, checker, log)
	assignmentService := services.NewAssignmentService(sessionRepo, assignmentRepo, userRepo, log)
	responseService := services.NewResponseService(sessionRepo, assignmentRepo, sectionRepo, responseRepo, log)
	progressService := services.NewProgressService(sessionRepo, templateRepo, assignmentRepo, responseRepo, log)
	projectionService := services.NewProjectionService(sessionRepo, templateRepo, assignmentRepo, responseRepo)
	inviteService := services.NewInviteService(sessionRepo, orgRepo, assignmentService, log)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, tokens, log)
	orgHandler := handlers.NewOrganizationHandler(orgService, log)
	templateHandler := handlers.NewTemplateHandler(templateService, log)
	bankHandler := handlers.NewQuestionBankHandler(questionService, log)
	sessionHandler := handlers.NewSessionHandler(sessionService, progressService, projectionService, inviteService, log)
	assignmentHandler := handlers.NewAssignmentHandler(assignmentService, progressService, log)
	responseHandler := handlers.NewResponseHandler(responseService, log)

	resolver := access.NewResolver(
		access.Conventional(),
		access.SingleMembership(),
		access.FromResource(access.Param("sessionId"), linkStore.SessionOwner),
		access.FromResource(access.Param("templateId"), linkStore.TemplateOwner),
	)
	requireOrg := middleware.ResolveOrganization(resolver, access.Options{}, log)
	optionalOrg := middleware.ResolveOrganization(resolver, access.Options{Optional: true}, log)

	rateLimitStore := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Minute,
		Limit: cfg.RateLimit.LoginPerMinute,
	})
	limiter := ratelimit.RateLimiter(rateLimitStore, &ratelimit.Options{
		ErrorHandler: errorHandler,
		KeyFunc:      keyFunc,
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Assessment API is running",
		})
	})

	authenticated := []gin.HandlerFunc{
		middleware.RequireAuth(tokens),
		middleware.LoadActor(authService, log),
	}

	api := router.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/signup", limiter, authHandler.Signup)
			authRoutes.POST("/login", limiter, authHandler.Login)
			authRoutes.POST("/logout", authHandler.Logout)
			authRoutes.GET("/me", middleware.RequireAuth(tokens), authHandler.GetCurrentUser)
		}

		protected := api.Group("")
		protected.Use(authenticated...)

		orgs := protected.Group("/organizations")
		{
			orgs.POST("", orgHandler.CreateOrganization)
			orgs.GET("", orgHandler.ListOrganizations)
			orgs.POST("/join", orgHandler.JoinOrganization)

			org := orgs.Group("/:orgId", requireOrg)
			org.GET("", orgHandler.GetOrganization)
			org.PUT("", orgHandler.UpdateOrganization)
			org.POST("/regenerate-code", orgHandler.RegenerateInviteCode)
			org.POST("/members", orgHandler.AddMember)
			org.PUT("/members/:userId", orgHandler.UpdateMemberRoles)
			org.DELETE("/members/:userId", orgHandler.RemoveMember)
			org.POST("/teams", orgHandler.CreateTeam)
		}

		templates := protected.Group("/templates", requireOrg)
		{
			templates.POST("", templateHandler.CreateTemplate)
			templates.GET("", templateHandler.ListTemplates)
			templates.GET("/:templateId", templateHandler.GetTemplate)
			templates.PATCH("/:templateId", templateHandler.UpdateTemplate)
			templates.DELETE("/:templateId", templateHandler.DeleteTemplate)
			templates.POST("/:templateId/links", templateHandler.LinkTemplate)
			templates.POST("/:templateId/sections", templateHandler.CreateSection)
			templates.PUT("/:templateId/sections/order", templateHandler.ReorderSections)
		}

		sections := protected.Group("/sections/:sectionId", requireOrg)
		{
			sections.PATCH("", templateHandler.UpdateSection)
			sections.DELETE("", templateHandler.DeleteSection)
			sections.POST("/questions", templateHandler.AddTemplateQuestion)
			sections.PUT("/questions", templateHandler.SetSectionQuestions)
			sections.PUT("/questions/order", templateHandler.ReorderSectionQuestions)
		}

		templateQuestions := protected.Group("/template-questions/:linkId", requireOrg)
		{
			templateQuestions.PATCH("", templateHandler.UpdateTemplateQuestion)
			templateQuestions.DELETE("", templateHandler.DeleteTemplateQuestion)
		}

		banks := protected.Group("/question-banks", requireOrg)
		{
			banks.POST("", bankHandler.CreateQuestionBank)
			banks.GET("", bankHandler.ListQuestionBanks)
			banks.POST("/:bankId/links", bankHandler.LinkQuestionBank)
			banks.POST("/:bankId/option-sets", bankHandler.CreateOptionSet)
			banks.POST("/:bankId/questions", bankHandler.CreateQuestion)
			banks.GET("/:bankId/questions", bankHandler.ListQuestions)
		}

		protected.PUT("/option-sets/:setId/options", requireOrg, bankHandler.ReplaceOptions)

		questions := protected.Group("/questions/:questionId", requireOrg)
		{
			questions.GET("", bankHandler.GetQuestion)
			questions.PATCH("", bankHandler.UpdateQuestion)
			questions.DELETE("", bankHandler.DeleteQuestion)
		}

		sessionRoutes := protected.Group("/sessions")
		{
			sessionRoutes.POST("", requireOrg, sessionHandler.CreateSession)
			sessionRoutes.GET("", requireOrg, sessionHandler.ListSessions)

			session := sessionRoutes.Group("/:sessionId", optionalOrg)
			session.GET("", sessionHandler.GetSession)
			session.PATCH("", sessionHandler.UpdateSession)
			session.DELETE("", sessionHandler.DeleteSession)
			session.GET("/progress", sessionHandler.SessionProgress)
			session.GET("/users/:userId/progress", sessionHandler.UserProgress)
			session.GET("/projection", sessionHandler.Projection)
			session.POST("/assignments", assignmentHandler.AddAssignment)
			session.GET("/assignments", assignmentHandler.ListAssignments)
			session.POST("/assignments/bulk", assignmentHandler.BulkAssign)
			session.PUT("/responses", responseHandler.UpsertResponse)
			session.PUT("/responses/bulk", responseHandler.BulkUpsertResponses)
		}

		assignments := protected.Group("/assignments/:assignmentId")
		{
			assignments.GET("", assignmentHandler.GetAssignment)
			assignments.PATCH("", assignmentHandler.UpdateAssignment)
			assignments.DELETE("", assignmentHandler.RemoveAssignment)
			assignments.POST("/restore", assignmentHandler.RestoreAssignment)
			assignments.GET("/progress", assignmentHandler.AssignmentProgress)
			assignments.GET("/responses", responseHandler.ListResponses)
		}

		protected.DELETE("/responses/:responseId", responseHandler.DeleteResponse)
		protected.POST("/invites/redeem", sessionHandler.RedeemInvite)
	}

	return router, nil
}
