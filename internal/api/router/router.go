package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"scout-assist/config"
	"scout-assist/internal/api/handler"
	"scout-assist/internal/api/middleware"
	"scout-assist/internal/authz"
	"scout-assist/internal/service"
)

// Deps 路由依赖
type Deps struct {
	Config   *config.Config
	Handler  *handler.Handler
	Auth     middleware.Authenticator
	Activity middleware.ActivityRecorder
	Policy   *authz.Policy
	Limiter  middleware.RateLimiter // 可为 nil（不限流）
	Logger   *zap.Logger
}

// NewDeps 由 Service 聚合构造路由依赖
func NewDeps(cfg *config.Config, svc *service.Service, policy *authz.Policy, limiter middleware.RateLimiter, logger *zap.Logger) *Deps {
	return &Deps{
		Config:   cfg,
		Handler:  handler.NewHandler(svc),
		Auth:     svc.Auth,
		Activity: svc.Audit,
		Policy:   policy,
		Limiter:  limiter,
		Logger:   logger,
	}
}

// Setup 初始化并返回 Gin 路由引擎
func Setup(d *Deps) *gin.Engine {
	cfg, h, policy := d.Config, d.Handler, d.Policy

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins, cfg.Server.CORS.AllowOriginPatterns))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	r.GET("/metrics", middleware.MetricsHandler())

	can := func(c authz.Capability) gin.HandlerFunc {
		return middleware.Require(policy, authz.Has(c))
	}
	track := func(action string) gin.HandlerFunc {
		return middleware.Activity(d.Activity, action)
	}

	api := r.Group("/api")
	{
		api.GET("/health", handler.Health)

		// 认证模块（无需认证）
		api.POST("/auth/login",
			middleware.RateLimit(d.Limiter, d.Logger, cfg.RateLimit.LoginLimit, cfg.RateLimit.LoginWindow),
			h.Auth.Login)

		// 需要认证的路由
		authorized := api.Group("")
		authorized.Use(middleware.JWTAuth(d.Auth))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.PUT("/auth/me", track("auth.update_me"), h.Auth.UpdateMe)

			// 用户模块
			users := authorized.Group("/users")
			{
				users.GET("", can(authz.CapViewUsers), h.User.ListUsers)
				users.GET("/:id", can(authz.CapViewUsers), h.User.GetUser)
				users.POST("", can(authz.CapManageUsers), track("user.create"), h.User.CreateUser)
				users.PUT("/:id", can(authz.CapManageUsers), track("user.update"), h.User.UpdateUser)
				users.DELETE("/:id", can(authz.CapManageUsers), track("user.delete"), h.User.DeleteUser)
			}

			// 职种模块
			jobTypes := authorized.Group("/job-types")
			{
				jobTypes.GET("", h.JobType.ListJobTypes)
				jobTypes.GET("/:id", h.JobType.GetJobType)
				jobTypes.POST("", can(authz.CapManageJobTypes), track("job_type.create"), h.JobType.CreateJobType)
				jobTypes.PUT("/:id", can(authz.CapManageJobTypes), track("job_type.update"), h.JobType.UpdateJobType)
				jobTypes.DELETE("/:id", can(authz.CapManageJobTypes), track("job_type.delete"), h.JobType.DeleteJobType)
			}

			// 出力规则模块
			rules := authorized.Group("/output-rules")
			{
				rules.GET("", h.OutputRule.ListOutputRules)
				rules.GET("/:id", h.OutputRule.GetOutputRule)
				rules.POST("", can(authz.CapManageOutputRules), track("output_rule.create"), h.OutputRule.CreateOutputRule)
				rules.PUT("/:id", can(authz.CapManageOutputRules), track("output_rule.update"), h.OutputRule.UpdateOutputRule)
				rules.DELETE("/:id", can(authz.CapManageOutputRules), track("output_rule.delete"), h.OutputRule.DeleteOutputRule)
			}

			// 模板模块（编辑 / 删除权限由 Service 层按分配关系判定）
			templates := authorized.Group("/templates")
			{
				templates.GET("", h.Template.ListTemplates)
				templates.GET("/:id", h.Template.GetTemplate)
				templates.POST("", track("template.create"), h.Template.CreateTemplate)
				templates.PUT("/:id", track("template.update"), h.Template.UpdateTemplate)
				templates.DELETE("/:id", track("template.delete"), h.Template.DeleteTemplate)
				templates.POST("/:id/duplicate", track("template.duplicate"), h.Template.DuplicateTemplate)
				templates.GET("/:id/users", can(authz.CapManageTemplates), h.Template.ListTemplateUsers)
				templates.PUT("/:id/assign-users",
					middleware.Require(policy, authz.AllOf(authz.Has(authz.CapManageTemplates), authz.Has(authz.CapManageUsers))),
					track("template.assign_users"),
					h.Template.AssignTemplateUsers)
			}

			// 生成模块
			authorized.POST("/generate",
				can(authz.CapGenerate),
				middleware.RateLimit(d.Limiter, d.Logger, cfg.RateLimit.GenerateLimit, cfg.RateLimit.GenerateWindow),
				h.Generation.Generate)
			myHistory := authorized.Group("/my-generation-history", can(authz.CapOwnHistory))
			{
				myHistory.GET("", h.Generation.ListMyHistory)
				myHistory.DELETE("/:id", track("history.delete"), h.Generation.DeleteMyHistory)
			}

			// 管理模块
			admin := authorized.Group("/admin")
			{
				admin.GET("/login-logs", can(authz.CapViewLogs), h.Admin.ListLoginLogs)
				admin.GET("/activity-logs", can(authz.CapViewLogs), h.Admin.ListActivityLogs)
				admin.GET("/generation-history", can(authz.CapViewHistory), h.Admin.ListGenerationHistory)
				admin.GET("/usage-stats", can(authz.CapViewUsage), h.Admin.UsageStats)
				admin.GET("/generation-history/download-csv", can(authz.CapExportHistory), track("history.export_csv"), h.Export.DownloadCSV)
				admin.GET("/generation-history/download-xlsx", can(authz.CapExportHistory), track("history.export_xlsx"), h.Export.DownloadXLSX)

				teams := admin.Group("/teams", can(authz.CapManageTeams))
				{
					teams.GET("", h.Team.ListTeams)
					teams.GET("/:id", h.Team.GetTeam)
					teams.POST("", track("team.create"), h.Team.CreateTeam)
					teams.PUT("/:id", track("team.update"), h.Team.UpdateTeam)
					teams.DELETE("/:id", track("team.delete"), h.Team.DeleteTeam)
					teams.POST("/:id/members", track("team.add_member"), h.Team.AddMember)
					teams.PUT("/:id/members/:userId", track("team.update_member"), h.Team.UpdateMember)
					teams.DELETE("/:id/members/:userId", track("team.remove_member"), h.Team.RemoveMember)
					teams.PUT("/:id/templates", track("team.assign_templates"), h.Team.AssignTemplates)
					teams.PUT("/:id/output-rules", track("team.assign_output_rules"), h.Team.AssignOutputRules)
				}
			}
		}
	}

	return r
}
