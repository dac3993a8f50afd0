package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-gin-user-service/internal/domain"
	"go-gin-user-service/internal/service"
	"go-gin-user-service/internal/transport/http/middleware"
	resp "go-gin-user-service/internal/transport/http/response"
	"go-gin-user-service/internal/transport/http/schema"
	"go-gin-user-service/pkg/utils"
)

// UserService 由 handler 定义，service.UserService 实现
type UserService interface {
	Create(ctx context.Context, in service.CreateUserInput) (service.UserSummary, error)
	List(ctx context.Context) ([]service.UserSummary, error)
	GetByID(ctx context.Context, id string) (service.UserSummary, bool, error)
	Update(ctx context.Context, id string, in service.UpdateUserInput) (service.UpdatedUser, error)
	Delete(ctx context.Context, id string) (bool, error)
}

var (
	userBody = schema.Shape{
		{Name: "email", Kind: schema.String, Required: true, Rules: []schema.Rule{schema.Email()}},
		{Name: "name", Kind: schema.String, Required: true, Rules: []schema.Rule{schema.MinLen(2)}},
		{Name: "password", Kind: schema.String, Required: true, Rules: []schema.Rule{schema.MinLen(6), schema.MaxBytes(utils.MaxPasswordBytes)}},
	}
	idParams = schema.Shape{
		{Name: "id", Kind: schema.String, Required: true, Rules: []schema.Rule{schema.UUID()}},
	}

	createSchema = schema.Schema{Body: userBody}
	byIDSchema   = schema.Schema{Params: idParams}
	updateSchema = schema.Schema{Params: idParams, Body: userBody.Partial()}
)

type UserHandler struct {
	svc UserService
	log *zap.Logger
}

func NewUserHandler(svc UserService, l *zap.Logger) *UserHandler {
	if l == nil {
		l = zap.NewNop()
	}
	return &UserHandler{svc: svc, log: l}
}

// MountAPI 挂载 /users 路由（实现 router.APIModule）
func (h *UserHandler) MountAPI(g *gin.RouterGroup) {
	g.POST("/users", h.Create)
	g.GET("/users", h.List)
	g.GET("/users/:id", h.Get)
	g.PATCH("/users/:id", h.Update)
	g.DELETE("/users/:id", h.Delete)
}

func (h *UserHandler) Create(c *gin.Context) {
	v, ok := h.bind(c, "create", createSchema)
	if !ok {
		return
	}
	var in service.CreateUserInput
	if err := schema.Decode(v.Body, &in); err != nil {
		h.fail(c, "create", "", err, resp.MsgCreateFailed)
		return
	}
	out, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, "create", "", err, resp.MsgCreateFailed)
		return
	}
	c.JSON(http.StatusCreated, resp.OK(http.StatusCreated, out))
}

func (h *UserHandler) List(c *gin.Context) {
	out, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.fail(c, "list", "", err, resp.MsgListFailed)
		return
	}
	c.JSON(http.StatusOK, resp.OK(http.StatusOK, out))
}

func (h *UserHandler) Get(c *gin.Context) {
	v, ok := h.bind(c, "get", byIDSchema)
	if !ok {
		return
	}
	id := v.Params["id"].(string)
	out, found, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "get", id, err, resp.MsgGetFailed)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, resp.Error(http.StatusNotFound, resp.MsgUserNotFound))
		return
	}
	c.JSON(http.StatusOK, resp.OK(http.StatusOK, out))
}

func (h *UserHandler) Update(c *gin.Context) {
	v, ok := h.bind(c, "update", updateSchema)
	if !ok {
		return
	}
	id := v.Params["id"].(string)
	var in service.UpdateUserInput
	if err := schema.Decode(v.Body, &in); err != nil {
		h.fail(c, "update", id, err, resp.MsgUpdateFailed)
		return
	}
	out, err := h.svc.Update(c.Request.Context(), id, in)
	if err != nil {
		h.fail(c, "update", id, err, resp.MsgUpdateFailed)
		return
	}
	c.JSON(http.StatusOK, resp.OK(http.StatusOK, out))
}

func (h *UserHandler) Delete(c *gin.Context) {
	v, ok := h.bind(c, "delete", byIDSchema)
	if !ok {
		return
	}
	id := v.Params["id"].(string)
	if _, err := h.svc.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, "delete", id, err, resp.MsgDeleteFailed)
		return
	}
	c.Status(http.StatusNoContent)
}

// fail 唯一的错误出口：决定状态码与对外文案，细节只进日志
func (h *UserHandler) fail(c *gin.Context, op, id string, err error, msg string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		status, msg = http.StatusNotFound, resp.MsgUserNotFound
	case errors.Is(err, domain.ErrEmailTaken):
		status, msg = http.StatusConflict, resp.MsgEmailTaken
	case errors.Is(err, context.DeadlineExceeded), errors.Is(c.Request.Context().Err(), context.DeadlineExceeded):
		// 驱动不一定原样返回 ctx 错误，以请求 ctx 为准
		status, msg = http.StatusGatewayTimeout, resp.MsgTimeout
	}

	fields := []zap.Field{
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("rid", c.GetString(middleware.KeyRequestID)),
		zap.Error(err),
	}
	if id != "" {
		fields = append(fields, zap.String("id", id))
	}
	if status == http.StatusInternalServerError {
		h.log.Error("user request failed", fields...)
	} else {
		h.log.Warn("user request rejected", fields...)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp.Error(status, msg))
}
