// internal/handlers/auth.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ryojun/typestorm/internal/auth"
)

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// LoginHandler exchanges the operator password for a session token. Overlay
// viewers never log in; only control dashboards do.
//
// POST /auth/login {"password": "..."}
func LoginHandler(srv *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		if !auth.VerifyOperator(req.Password) {
			srv.Logger.Warnf("failed operator login attempt from %s", r.RemoteAddr)
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}

		token, err := auth.CreateJWT(auth.OperatorSubject)
		if err != nil {
			srv.Logger.Errorf("failed to issue operator token: %v", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		writeJSON(srv.Logger, w, loginResponse{Token: token})
	}
}
