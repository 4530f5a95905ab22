package dto

import (
	"encoding/json"
	"net/http"
)

type BaseResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func NewBaseResponse(code int, message string, data interface{}) *BaseResponse {
	return &BaseResponse{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

func NewBadRequestResponse(message string) *BaseResponse {
	return NewBaseResponse(http.StatusBadRequest, message, nil)
}

func NewSuccessResponse(message string, data interface{}) *BaseResponse {
	return NewBaseResponse(http.StatusOK, message, data)
}

// AlertRunResponse is the body of a manual alert cycle run. Result holds the
// per user summary when the cycle produced one and Output the raw text
// otherwise.
type AlertRunResponse struct {
	ExitCode int32           `json:"exit_code"`
	Result   json.RawMessage `json:"result,omitempty"`
	Output   string          `json:"output,omitempty"`
}

func NewAlertRunResponse(exitCode int32, output string) *AlertRunResponse {
	resp := &AlertRunResponse{ExitCode: exitCode}
	if json.Valid([]byte(output)) {
		resp.Result = json.RawMessage(output)
	} else {
		resp.Output = output
	}
	return resp
}
