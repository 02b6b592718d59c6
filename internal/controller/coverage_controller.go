package controller

import (
	"k12_curriculum_backend/internal/service"
	"k12_curriculum_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CoverageController struct {
	CoverageService *service.CoverageService
	GapFiller       *service.GapFiller
}

func NewCoverageController(coverageService *service.CoverageService, gapFiller *service.GapFiller) *CoverageController {
	return &CoverageController{
		CoverageService: coverageService,
		GapFiller:       gapFiller,
	}
}

// GetCoverage godoc
// @Summary 获取各年级学科的内容覆盖状态
// @Tags coverage
// @Produce json
// @Param refresh query bool false "Bypass the snapshot cache"
// @Success 200 {object} util.Response
// @Router /coverage [get]
func (ctl *CoverageController) GetCoverage(c *gin.Context) {
	forceRefresh := c.Query("refresh") == "true"
	util.Success(c, ctl.CoverageService.GetContentCoverage(forceRefresh))
}

// GetSummary godoc
// @Summary 内容覆盖摘要
// @Tags coverage
// @Produce json
// @Success 200 {object} util.Response
// @Router /coverage/summary [get]
func (ctl *CoverageController) GetSummary(c *gin.Context) {
	util.Success(c, ctl.CoverageService.GetCoverageSummary())
}

// IsReady godoc
// @Summary 查询某年级学科是否达到可发布状态
// @Tags coverage
// @Produce json
// @Param grade query string true "Grade band"
// @Param subject query string true "Subject"
// @Param allowBeta query bool false "Accept the beta tier"
// @Success 200 {object} util.Response
// @Router /coverage/ready [get]
func (ctl *CoverageController) IsReady(c *gin.Context) {
	grade := c.Query("grade")
	subject := c.Query("subject")
	if grade == "" || subject == "" {
		util.BadRequest(c, "grade and subject are required")
		return
	}
	allowBeta := c.Query("allowBeta") == "true"

	util.Success(c, gin.H{
		"grade":   grade,
		"subject": subject,
		"ready":   ctl.CoverageService.IsGradeSubjectReady(grade, subject, allowBeta),
	})
}

type filterModulesRequest struct {
	ModuleIDs []uint `json:"moduleIds" binding:"required"`
	AllowBeta bool   `json:"allowBeta"`
}

// FilterModules godoc
// @Summary 按覆盖状态过滤候选模块
// @Tags coverage
// @Accept json
// @Produce json
// @Param body body filterModulesRequest true "Candidate module ids"
// @Success 200 {object} util.Response
// @Router /coverage/modules/filter [post]
func (ctl *CoverageController) FilterModules(c *gin.Context) {
	var req filterModulesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}
	util.Success(c, ctl.CoverageService.FilterModulesByReadiness(req.ModuleIDs, req.AllowBeta))
}

// Refresh godoc
// @Summary 强制重新计算覆盖快照
// @Tags coverage
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /admin/coverage/refresh [post]
func (ctl *CoverageController) Refresh(c *gin.Context) {
	util.Success(c, ctl.CoverageService.GetContentCoverage(true))
}

type gapFillRequest struct {
	GradeBands []string `json:"gradeBands"`
}

// RunGapFill godoc
// @Summary 对低于基线的模块执行补齐
// @Tags coverage
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /admin/gapfill [post]
func (ctl *CoverageController) RunGapFill(c *gin.Context) {
	var req gapFillRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		util.BadRequest(c, err.Error())
		return
	}

	processed, err := ctl.GapFiller.Run(req.GradeBands)
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	// Writes only become visible once the snapshot is next recomputed.
	util.Success(c, gin.H{"processed": processed})
}
