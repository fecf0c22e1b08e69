package handler

import (
	"linkhub/internal/model"
	"linkhub/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

// HubHandler 聚合页接口
type HubHandler struct {
	svc *service.Service
	Options
}

func NewHubHandler(svc *service.Service, opts Options) *HubHandler {
	return &HubHandler{svc: svc, Options: opts}
}

// HubLinkRequest 聚合页条目
type HubLinkRequest struct {
	Title string `json:"title" binding:"required,max=100" example:"GitHub"`
	URL   string `json:"url" binding:"required,http_url" example:"https://github.com"`
	Order *int   `json:"order" binding:"required,min=0" example:"0"`
}

// CreateHubRequest 创建聚合页请求
type CreateHubRequest struct {
	Title       string           `json:"title" binding:"required,max=100" example:"My links"`
	Description string           `json:"description" binding:"max=500" example:"Everything in one place"`
	Links       []HubLinkRequest `json:"links" binding:"required,min=1,max=10,dive"`
	CustomName  *string          `json:"customName" example:"my-hub"`
	ExpiresAt   *time.Time       `json:"expiresAt" example:"2030-01-01T00:00:00Z"`
}

// HubResponse 聚合页信息
type HubResponse struct {
	ID          uint            `json:"id"`
	HubName     string          `json:"hubName"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Links       []model.HubLink `json:"links"`
	CustomName  *string         `json:"customName,omitempty"`
	ShortURL    string          `json:"shortUrl"`
	ClickCount  int64           `json:"clickCount"`
	CreatedAt   time.Time       `json:"createdAt"`
	ExpiresAt   *time.Time      `json:"expiresAt,omitempty"`
}

func toHubResponse(baseURL string, hub *model.Hub) HubResponse {
	links := hub.Links
	if links == nil {
		links = []model.HubLink{}
	}
	return HubResponse{
		ID:          hub.ID,
		HubName:     hub.HubName,
		Title:       hub.Title,
		Description: hub.Description,
		Links:       links,
		CustomName:  hub.CustomName,
		ShortURL:    baseURL + "/h/" + hub.HubName,
		ClickCount:  hub.ClickCount,
		CreatedAt:   hub.CreatedAt,
		ExpiresAt:   hub.ExpiresAt,
	}
}

// CreateHub godoc
// @Summary 创建聚合页
// @Description 1 到 10 个条目，与短链接共用短名空间
// @Tags Hubs
// @Accept json
// @Produce json
// @Param hub body CreateHubRequest true "聚合页信息"
// @Success 201 {object} HubResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/hubs [post]
func (h *HubHandler) CreateHub(c *gin.Context) {
	var req CreateHubRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, bindError(err))
		return
	}
	if err := validateCustomName(req.CustomName); err != nil {
		h.fail(c, err)
		return
	}

	hub, err := h.svc.CreateHub(c.Request.Context(), service.CreateHubInput{
		Title:       req.Title,
		Description: req.Description,
		Links: lo.Map(req.Links, func(l HubLinkRequest, _ int) service.HubLinkInput {
			return service.HubLinkInput{Title: l.Title, URL: l.URL, Order: lo.FromPtr(l.Order)}
		}),
		CustomName: lo.FromPtr(req.CustomName),
		ExpiresAt:  req.ExpiresAt,
		UserIP:     c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	respond(c, http.StatusCreated, toHubResponse(h.baseURL(c), hub))
}

// CheckAvailability godoc
// @Summary 检查聚合页名称是否可用
// @Tags Hubs
// @Accept json
// @Produce json
// @Param body body CheckAvailabilityRequest true "候选名称"
// @Success 200 {object} AvailabilityResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/hubs/check-availability [post]
func (h *HubHandler) CheckAvailability(c *gin.Context) {
	checkAvailability(c, h.svc, h.Options)
}

// GetHub godoc
// @Summary 获取聚合页
// @Description 不计入访问次数
// @Tags Hubs
// @Produce json
// @Param hubName path string true "聚合页名称"
// @Success 200 {object} HubResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/hubs/{hubName} [get]
func (h *HubHandler) GetHub(c *gin.Context) {
	hub, err := h.svc.GetHub(c.Request.Context(), c.Param("hubName"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, toHubResponse(h.baseURL(c), hub))
}

// GetStats godoc
// @Summary 聚合页统计
// @Tags Hubs
// @Produce json
// @Param hubName path string true "聚合页名称"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /api/hubs/{hubName}/stats [get]
func (h *HubHandler) GetStats(c *gin.Context) {
	hub, stats, err := h.svc.HubStats(c.Request.Context(), c.Param("hubName"))
	if err != nil {
		h.fail(c, err)
		return
	}

	respond(c, http.StatusOK, gin.H{
		"hub": gin.H{
			"hubName":    hub.HubName,
			"title":      hub.Title,
			"clickCount": hub.ClickCount,
			"createdAt":  hub.CreatedAt,
			"expiresAt":  hub.ExpiresAt,
		},
		"stats": stats,
	})
}

// ListHubs godoc
// @Summary 聚合页列表
// @Tags Hubs
// @Produce json
// @Param limit query int false "每页数量"
// @Param offset query int false "偏移量"
// @Success 200 {array} HubResponse
// @Router /api/hubs [get]
func (h *HubHandler) ListHubs(c *gin.Context) {
	limit, offset := pageParams(c)
	hubs, err := h.svc.ListHubs(c.Request.Context(), limit, offset)
	if err != nil {
		h.fail(c, err)
		return
	}

	base := h.baseURL(c)
	respond(c, http.StatusOK, lo.Map(hubs, func(hub model.Hub, _ int) HubResponse {
		return toHubResponse(base, &hub)
	}))
}

// DeactivateHub godoc
// @Summary 停用聚合页
// @Tags Hubs
// @Security ApiKeyAuth
// @Produce json
// @Param hubName path string true "聚合页名称"
// @Success 200 {object} HubResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/hubs/{hubName}/deactivate [put]
func (h *HubHandler) DeactivateHub(c *gin.Context) {
	hub, err := h.svc.DeactivateHub(c.Request.Context(), c.Param("hubName"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, toHubResponse(h.baseURL(c), hub))
}
