package controller

import (
	"errors"
	"strconv"

	"k12_curriculum_backend/internal/service"
	"k12_curriculum_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AssetController struct {
	AssetService *service.AssetService
}

func NewAssetController(assetService *service.AssetService) *AssetController {
	return &AssetController{AssetService: assetService}
}

// Upload godoc
// @Summary 上传模块的嵌入式拓展资源
// @Tags assets
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param moduleId formData int true "Module id"
// @Param title formData string true "Asset title"
// @Param file formData file true "Asset file"
// @Success 201 {object} util.Response
// @Router /admin/assets/upload [post]
func (ctl *AssetController) Upload(c *gin.Context) {
	moduleID, err := strconv.ParseUint(c.PostForm("moduleId"), 10, 32)
	if err != nil {
		util.BadRequest(c, "moduleId is required")
		return
	}
	title := c.PostForm("title")
	if title == "" {
		util.BadRequest(c, "title is required")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		util.BadRequest(c, "file is required")
		return
	}

	src, err := file.Open()
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	defer src.Close()

	asset, err := ctl.AssetService.UploadEmbedded(
		c.Request.Context(),
		uint(moduleID),
		title,
		file.Filename,
		src,
		file.Size,
		file.Header.Get("Content-Type"),
	)
	if err != nil {
		if errors.Is(err, util.ErrModuleNotFound) {
			util.NotFound(c)
			return
		}
		util.LogInternalError(c, err)
		return
	}
	util.Created(c, asset)
}

type addLinkRequest struct {
	ModuleID uint   `json:"moduleId" binding:"required"`
	Title    string `json:"title" binding:"required"`
	URL      string `json:"url" binding:"required,url"`
	Provider string `json:"provider"`
}

// AddLink godoc
// @Summary 为模块添加外链拓展资源
// @Tags assets
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body addLinkRequest true "Link asset"
// @Success 201 {object} util.Response
// @Router /admin/assets/link [post]
func (ctl *AssetController) AddLink(c *gin.Context) {
	var req addLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	asset, err := ctl.AssetService.AddLink(req.ModuleID, req.Title, req.URL, req.Provider)
	if err != nil {
		if errors.Is(err, util.ErrModuleNotFound) {
			util.NotFound(c)
			return
		}
		util.LogInternalError(c, err)
		return
	}
	util.Created(c, asset)
}

// ListByModule godoc
// @Summary 查看模块的拓展资源
// @Tags assets
// @Produce json
// @Param id path int true "Module id"
// @Success 200 {object} util.Response
// @Router /modules/{id}/assets [get]
func (ctl *AssetController) ListByModule(c *gin.Context) {
	moduleID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(c, "invalid module id")
		return
	}

	assets, err := ctl.AssetService.ListByModule(uint(moduleID))
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	util.Success(c, assets)
}
