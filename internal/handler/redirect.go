package handler

import (
	"linkhub/internal/apperror"
	"linkhub/internal/service"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// RedirectHandler 公开的跳转入口
type RedirectHandler struct {
	svc *service.Service
	Options
}

func NewRedirectHandler(svc *service.Service, opts Options) *RedirectHandler {
	return &RedirectHandler{svc: svc, Options: opts}
}

func visitFrom(c *gin.Context) service.Visit {
	return service.Visit{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Referrer:  c.Request.Referer(),
		Country:   c.GetHeader("CF-IPCountry"),
	}
}

// Redirect godoc
// @Summary 短名跳转
// @Description 短链接返回 302；同名聚合页返回 JSON（type=hub）由前端渲染
// @Tags Redirect
// @Produce json
// @Param shortName path string true "短名"
// @Success 200 {object} map[string]interface{} "聚合页"
// @Success 302 "跳转到原始链接"
// @Failure 404 {object} ErrorResponse
// @Failure 410 {object} ErrorResponse
// @Router /{shortName} [get]
func (h *RedirectHandler) Redirect(c *gin.Context) {
	dispatch, err := h.svc.Resolve(c.Request.Context(), c.Param("shortName"), visitFrom(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	switch dispatch.Outcome {
	case service.OutcomeHub:
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"type":    "hub",
			"data":    toHubResponse(h.baseURL(c), dispatch.Hub),
		})
	default:
		c.Redirect(http.StatusFound, dispatch.Location)
	}
}

// ViewHub godoc
// @Summary 访问聚合页
// @Description 返回聚合页内容并累加访问次数
// @Tags Redirect
// @Produce json
// @Param hubName path string true "聚合页名称"
// @Success 200 {object} HubResponse
// @Failure 404 {object} ErrorResponse
// @Failure 410 {object} ErrorResponse
// @Router /h/{hubName} [get]
func (h *RedirectHandler) ViewHub(c *gin.Context) {
	hub, err := h.svc.ViewHub(c.Request.Context(), c.Param("hubName"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, toHubResponse(h.baseURL(c), hub))
}

// FollowHubLink godoc
// @Summary 聚合页条目跳转
// @Description 跳转到指定 order 的条目并累加该条目点击数
// @Tags Redirect
// @Param hubName path string true "聚合页名称"
// @Param order path int true "条目顺序"
// @Success 302 "跳转到条目链接"
// @Failure 404 {object} ErrorResponse
// @Failure 410 {object} ErrorResponse
// @Router /h/{hubName}/{order} [get]
func (h *RedirectHandler) FollowHubLink(c *gin.Context) {
	order, err := strconv.Atoi(c.Param("order"))
	if err != nil || order < 0 {
		h.fail(c, apperror.NotFound("Hub link not found"))
		return
	}

	location, err := h.svc.FollowHubLink(c.Request.Context(), c.Param("hubName"), order)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, location)
}
