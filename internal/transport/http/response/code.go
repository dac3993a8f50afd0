package response

import "net/http"

// 对外错误文案统一在这里维护，内部错误细节不出现在响应体
const (
	MsgValidation      = "Validation failed"
	MsgUserNotFound    = "User not found"
	MsgEmailTaken      = "Email already in use"
	MsgCreateFailed    = "Error creating user"
	MsgListFailed      = "Error fetching users"
	MsgGetFailed       = "Error fetching user"
	MsgUpdateFailed    = "Error updating user"
	MsgDeleteFailed    = "Error deleting user"
	MsgRouteNotFound   = "Route not found"
	MsgInternal        = "Internal Server Error"
	MsgTooManyRequests = "Too many requests"
	MsgBusy            = "Server busy"
	MsgBodyTooLarge    = "Request body too large"
	MsgTimeout         = "Request timeout"
)

// StatusMsgMap 未指定文案时的默认 msg
var StatusMsgMap = map[int]string{
	http.StatusOK:                    "OK",
	http.StatusCreated:               "Created",
	http.StatusBadRequest:            "Bad Request",
	http.StatusNotFound:              "Not Found",
	http.StatusMethodNotAllowed:      "Method Not Allowed",
	http.StatusConflict:              "Conflict",
	http.StatusRequestEntityTooLarge: MsgBodyTooLarge,
	http.StatusTooManyRequests:       MsgTooManyRequests,
	http.StatusInternalServerError:   MsgInternal,
	http.StatusServiceUnavailable:    MsgBusy,
	http.StatusGatewayTimeout:        MsgTimeout,
}
