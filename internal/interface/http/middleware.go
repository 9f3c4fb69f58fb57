package httpapi

import (
	"context"
	"net/http"
)

type ctxKey string

const ctxKeyUserID ctxKey = "userID"

// requireAuth 驗證 Bearer token，並將 userID 放入 request context。
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := parseBearer(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, errCodeUnauthorized, "unauthorized")
			return
		}
		claims, err := s.tokenSvc.ParseAccessToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, errCodeUnauthorized, "invalid token")
			return
		}
		ctx := context.WithValue(r.Context(), ctxKeyUserID, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func currentUserID(r *http.Request) int64 {
	if v, ok := r.Context().Value(ctxKeyUserID).(int64); ok {
		return v
	}
	return 0
}

func (s *Server) wrapGet(h http.HandlerFunc) http.Handler {
	return methodOnly(http.MethodGet, h)
}

func (s *Server) wrapPost(h http.HandlerFunc) http.Handler {
	return methodOnly(http.MethodPost, h)
}

func (s *Server) wrapPut(h http.HandlerFunc) http.Handler {
	return methodOnly(http.MethodPut, h)
}

func methodOnly(method string, h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			writeError(w, http.StatusMethodNotAllowed, errCodeMethodNotAllowed, "method not allowed")
			return
		}
		h(w, r)
	})
}
