package handler

import (
	"errors"
	"fmt"
	"linkhub/internal/apperror"
	"linkhub/internal/shortcode"
	"net/http"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Options 所有处理器共享的设置
type Options struct {
	BaseURL       string // 为空时使用请求的 Host
	ExposeDetails bool   // 非生产环境在 500 响应中附带错误信息
}

func init() {
	// 校验错误使用 JSON 字段名
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	}
}

// ErrorResponse 失败响应
type ErrorResponse struct {
	Success bool        `json:"success" example:"false"`
	Error   string      `json:"error" example:"This name is already taken"`
	Details interface{} `json:"details,omitempty"`
}

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func (o Options) fail(c *gin.Context, err error) {
	appErr := apperror.From(err)
	status := appErr.Status()

	resp := ErrorResponse{Error: appErr.Message}
	switch {
	case len(appErr.Fields) > 0:
		resp.Details = appErr.Fields
	case status >= http.StatusInternalServerError && o.ExposeDetails && appErr.Err != nil:
		resp.Details = appErr.Err.Error()
	}

	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		zap.S().Errorw("请求处理失败", "path", c.Request.URL.Path, "error", err)
	}
	c.AbortWithStatusJSON(status, resp)
}

// bindError 把绑定/校验错误转换为带字段信息的 400
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.InvalidInput("Invalid input", apperror.FieldError{Field: "body", Message: err.Error()})
	}

	fields := make([]apperror.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperror.FieldError{Field: fieldPath(fe), Message: fieldMessage(fe)})
	}
	return apperror.InvalidInput("Invalid input", fields...)
}

// fieldPath 去掉顶层结构体名，例如 CreateHubRequest.links[0].url -> links[0].url
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "url", "http_url":
		return "Invalid URL format"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at most %s items", fe.Param())
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed on %s", fe.Tag())
	}
}

// validateCustomName 自定义短名去掉空白后长度需在 3 到 50 之间，空字符串表示未指定
func validateCustomName(name *string) error {
	if name == nil || *name == "" {
		return nil
	}
	n := utf8.RuneCountInString(shortcode.Normalize(*name))
	if n < shortcode.MinNameLength || n > shortcode.MaxNameLength {
		return apperror.InvalidInput("Invalid input", apperror.FieldError{
			Field: "customName", Message: "Custom name must be between 3 and 50 characters",
		})
	}
	return nil
}

func (o Options) baseURL(c *gin.Context) string {
	if o.BaseURL != "" {
		return strings.TrimRight(o.BaseURL, "/")
	}
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}
