package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-gin-user-service/internal/transport/http/middleware"
	resp "go-gin-user-service/internal/transport/http/response"
	"go-gin-user-service/internal/transport/http/schema"
)

// bind 读取 body/query/params 并按 schema 校验；失败时已写出 400 响应
func (h *UserHandler) bind(c *gin.Context, op string, s schema.Schema) (schema.Values, bool) {
	raw := schema.Raw{Query: c.Request.URL.Query(), Params: map[string]string{}}
	for _, p := range c.Params {
		raw.Params[p.Key] = p.Value
	}

	if s.Body != nil {
		body, err := readJSON(c.Request)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, resp.Error(http.StatusRequestEntityTooLarge, resp.MsgBodyTooLarge))
				return schema.Values{}, false
			}
			h.rejectInput(c, op, &schema.ValidationError{Violations: []schema.Violation{{Field: "body", Reason: "invalid JSON"}}})
			return schema.Values{}, false
		}
		raw.Body = body
	}

	v, err := schema.Validate(s, raw)
	if err != nil {
		var ve *schema.ValidationError
		if errors.As(err, &ve) {
			h.rejectInput(c, op, ve)
			return schema.Values{}, false
		}
		h.fail(c, op, "", err, resp.MsgInternal)
		return schema.Values{}, false
	}
	return v, true
}

func (h *UserHandler) rejectInput(c *gin.Context, op string, ve *schema.ValidationError) {
	h.log.Warn("request validation failed",
		zap.String("op", op),
		zap.String("rid", c.GetString(middleware.KeyRequestID)),
		zap.Any("violations", ve.Violations),
	)
	c.AbortWithStatusJSON(http.StatusBadRequest, resp.Error(http.StatusBadRequest, resp.MsgValidation).WithDetails(ve.Violations))
}

// readJSON 空 body 返回 nil（由 schema 视为空对象）
func readJSON(r *http.Request) (any, error) {
	if r.Body == nil {
		return nil, nil
	}
	b, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, err
	}
	return v, nil
}
