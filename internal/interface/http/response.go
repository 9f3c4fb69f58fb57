package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
)

// 所有端點共用同一個回應形狀：成功時 success=true 加上各端點的
// 酬載欄位，失敗時固定為 error 訊息加 errCode* 其中一個代碼。
type apiError struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	ErrorCode string `json:"error_code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, apiError{Error: msg, ErrorCode: code})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("write response failed: %v", err)
	}
}
