package handler

import (
	"linkhub/internal/model"
	"linkhub/internal/service"
	"linkhub/internal/shortcode"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

// LinkHandler 短链接接口
type LinkHandler struct {
	svc *service.Service
	Options
}

func NewLinkHandler(svc *service.Service, opts Options) *LinkHandler {
	return &LinkHandler{svc: svc, Options: opts}
}

// CreateLinkRequest 创建短链接请求
type CreateLinkRequest struct {
	OriginalURL string     `json:"originalUrl" binding:"required,http_url" example:"https://example.com/some/long/path"`
	CustomName  *string    `json:"customName" example:"my-link"`
	ExpiresAt   *time.Time `json:"expiresAt" example:"2030-01-01T00:00:00Z"`
}

// CheckAvailabilityRequest 短名可用性查询请求
type CheckAvailabilityRequest struct {
	CustomName string `json:"customName" binding:"required" example:"my-link"`
}

// LinkResponse 短链接信息
type LinkResponse struct {
	ID          uint       `json:"id"`
	ShortName   string     `json:"shortName"`
	OriginalURL string     `json:"originalUrl"`
	CustomName  *string    `json:"customName,omitempty"`
	ShortURL    string     `json:"shortUrl"`
	ClickCount  int64      `json:"clickCount"`
	CreatedAt   time.Time  `json:"createdAt"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
}

// AvailabilityResponse 可用性查询结果
type AvailabilityResponse struct {
	CustomName string `json:"customName"`
	Available  bool   `json:"available"`
	Reason     string `json:"reason,omitempty"`
}

func (h *LinkHandler) toResponse(c *gin.Context, link *model.Link) LinkResponse {
	return LinkResponse{
		ID:          link.ID,
		ShortName:   link.ShortName,
		OriginalURL: link.OriginalURL,
		CustomName:  link.CustomName,
		ShortURL:    h.baseURL(c) + "/" + link.ShortName,
		ClickCount:  link.ClickCount,
		CreatedAt:   link.CreatedAt,
		ExpiresAt:   link.ExpiresAt,
	}
}

// CreateLink godoc
// @Summary 创建短链接
// @Description 未指定 customName 时随机生成 8 位短名
// @Tags Links
// @Accept json
// @Produce json
// @Param link body CreateLinkRequest true "短链接信息"
// @Success 201 {object} LinkResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /api/links [post]
func (h *LinkHandler) CreateLink(c *gin.Context) {
	var req CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, bindError(err))
		return
	}
	if err := validateCustomName(req.CustomName); err != nil {
		h.fail(c, err)
		return
	}

	link, err := h.svc.CreateLink(c.Request.Context(), service.CreateLinkInput{
		OriginalURL: req.OriginalURL,
		CustomName:  lo.FromPtr(req.CustomName),
		ExpiresAt:   req.ExpiresAt,
		UserIP:      c.ClientIP(),
		UserAgent:   c.Request.UserAgent(),
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	respond(c, http.StatusCreated, h.toResponse(c, link))
}

// CheckAvailability godoc
// @Summary 检查短名是否可用
// @Description 链接和聚合页共用同一个短名空间
// @Tags Links
// @Accept json
// @Produce json
// @Param body body CheckAvailabilityRequest true "候选短名"
// @Success 200 {object} AvailabilityResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/links/check-availability [post]
func (h *LinkHandler) CheckAvailability(c *gin.Context) {
	checkAvailability(c, h.svc, h.Options)
}

func checkAvailability(c *gin.Context, svc *service.Service, opts Options) {
	var req CheckAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		opts.fail(c, bindError(err))
		return
	}

	verdict, err := svc.CheckAvailability(c.Request.Context(), req.CustomName)
	if err != nil {
		opts.fail(c, err)
		return
	}
	respond(c, http.StatusOK, AvailabilityResponse{
		CustomName: shortcode.Normalize(req.CustomName),
		Available:  verdict.Available,
		Reason:     verdict.Reason,
	})
}

// GetStats godoc
// @Summary 短链接点击统计
// @Tags Links
// @Produce json
// @Param shortName path string true "短名"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /api/links/{shortName}/stats [get]
func (h *LinkHandler) GetStats(c *gin.Context) {
	link, stats, err := h.svc.LinkStats(c.Request.Context(), c.Param("shortName"))
	if err != nil {
		h.fail(c, err)
		return
	}

	respond(c, http.StatusOK, gin.H{
		"url": gin.H{
			"shortName":   link.ShortName,
			"originalUrl": link.OriginalURL,
			"clickCount":  link.ClickCount,
			"createdAt":   link.CreatedAt,
			"expiresAt":   link.ExpiresAt,
		},
		"stats": stats,
	})
}

// ListLinks godoc
// @Summary 短链接列表
// @Description 仅返回活跃链接，按创建时间倒序，limit 默认 50、最大 100
// @Tags Links
// @Produce json
// @Param limit query int false "每页数量"
// @Param offset query int false "偏移量"
// @Success 200 {array} LinkResponse
// @Router /api/links [get]
func (h *LinkHandler) ListLinks(c *gin.Context) {
	limit, offset := pageParams(c)
	links, err := h.svc.ListLinks(c.Request.Context(), limit, offset)
	if err != nil {
		h.fail(c, err)
		return
	}

	respond(c, http.StatusOK, lo.Map(links, func(l model.Link, _ int) LinkResponse {
		return h.toResponse(c, &l)
	}))
}

// DeactivateLink godoc
// @Summary 停用短链接
// @Description 停用后短名释放，可被重新分配
// @Tags Links
// @Security ApiKeyAuth
// @Produce json
// @Param shortName path string true "短名"
// @Success 200 {object} LinkResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/links/{shortName}/deactivate [put]
func (h *LinkHandler) DeactivateLink(c *gin.Context) {
	link, err := h.svc.DeactivateLink(c.Request.Context(), c.Param("shortName"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, h.toResponse(c, link))
}

// pageParams 读取分页参数，非法值交给 service.Page 处理
func pageParams(c *gin.Context) (int, int) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	return limit, offset
}
