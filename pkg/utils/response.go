package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
)

// maxBodyBytes 请求体大小上限
const maxBodyBytes = 64 << 10

// ErrorBody 是所有错误响应的统一结构
type ErrorBody struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// RespondJSON 先完成编码再写响应头，编码失败时返回500而不是半截的body
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[http] encode %T failed: %v", payload, err)
		status = http.StatusInternalServerError
		data = []byte(`{"error":"internal error","status":500}`)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(append(data, '\n'))
}

// RespondError 发送带状态码的错误响应，5xx会记录日志
func RespondError(w http.ResponseWriter, status int, message string) {
	if status >= http.StatusInternalServerError {
		log.Printf("[http] %d %s", status, message)
	}
	RespondJSON(w, status, ErrorBody{Error: message, Status: status})
}

// DecodeJSON 解析请求体，拒绝未知字段和超长请求。
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("request body must contain a single JSON object")
	}
	return nil
}
