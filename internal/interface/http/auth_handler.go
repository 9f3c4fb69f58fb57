package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	appauth "stock-alerts/internal/application/auth"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Email    string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, errCodeBadRequest, "invalid body")
		return
	}

	id, err := s.registerUC.Execute(r.Context(), appauth.RegisterInput{
		Username: body.Username,
		Password: body.Password,
		Email:    body.Email,
	})
	if errors.Is(err, appauth.ErrUserExists) {
		writeError(w, http.StatusConflict, errCodeConflict, "username or email already exists")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, errCodeBadRequest, err.Error())
		return
	}

	log.Printf("user registered user_id=%d username=%s", id, body.Username)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"user_id": id,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, errCodeBadRequest, "invalid body")
		return
	}

	res, err := s.loginUC.Execute(r.Context(), appauth.LoginInput{
		Username: body.Username,
		Password: body.Password,
	})
	if err != nil {
		log.Printf("login failed username=%s: %v", body.Username, err)
		writeError(w, http.StatusUnauthorized, errCodeInvalidCredentials, "invalid credentials")
		return
	}

	log.Printf("login success user_id=%d username=%s", res.User.ID, res.User.Username)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"access_token": res.Token,
		"token_type":   "Bearer",
		"expires_in":   int(s.tokenTTL.Seconds()),
	})
}

func (s *Server) handleUpdateEmail(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, errCodeBadRequest, "invalid body")
		return
	}

	err := s.emailUC.Execute(r.Context(), currentUserID(r), body.Email)
	if errors.Is(err, appauth.ErrUserExists) {
		writeError(w, http.StatusConflict, errCodeConflict, "email already in use")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, errCodeBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
	})
}
