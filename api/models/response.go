package models

// Response is the JSON envelope every endpoint returns. HTTP status mirrors
// Code for non-2xx results.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func OK(message string, data interface{}) *Response {
	return &Response{Code: 200, Message: message, Data: data}
}

func Fail(code int, message string) *Response {
	return &Response{Code: code, Message: message, Data: nil}
}

func FailWithData(code int, message string, data interface{}) *Response {
	return &Response{Code: code, Message: message, Data: data}
}
