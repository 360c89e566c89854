package handler

import (
	"github.com/gin-gonic/gin"

	"scout-assist/internal/service"
	"scout-assist/pkg/response"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	User       *UserHandler
	JobType    *JobTypeHandler
	OutputRule *OutputRuleHandler
	Template   *TemplateHandler
	Team       *TeamHandler
	Generation *GenerationHandler
	Admin      *AdminHandler
	Export     *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		User:       NewUserHandler(svc.User),
		JobType:    NewJobTypeHandler(svc.JobType),
		OutputRule: NewOutputRuleHandler(svc.OutputRule),
		Template:   NewTemplateHandler(svc.Template),
		Team:       NewTeamHandler(svc.Team),
		Generation: NewGenerationHandler(svc.Generation),
		Admin:      NewAdminHandler(svc.Audit, svc.History, svc.Usage),
		Export:     NewExportHandler(svc.Export),
	}
}

// Health 存活检查
// GET /api/health
func Health(c *gin.Context) {
	response.OK(c, gin.H{"status": "ok"})
}
