package response

import "net/http"

// Envelope 统一响应体：成功时只有 data，失败时只有 error（details 为可选的校验明细）
type Envelope struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data,omitempty"`
	Error      string `json:"error,omitempty"`
	Details    any    `json:"details,omitempty"`
}

// OK 成功响应（保证 data 不为 null）
func OK(status int, data any) Envelope {
	if data == nil {
		data = struct{}{}
	}
	return Envelope{Success: true, StatusCode: status, Data: data}
}

// Error 失败响应（customMsg 为空时使用默认文案）
func Error(status int, customMsg string) Envelope {
	msg := customMsg
	if msg == "" {
		msg = StatusMsgMap[status]
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return Envelope{Success: false, StatusCode: status, Error: msg}
}

// WithDetails attaches structured detail to an error envelope.
func (e Envelope) WithDetails(d any) Envelope {
	if e.Success {
		return e
	}
	e.Details = d
	return e
}
