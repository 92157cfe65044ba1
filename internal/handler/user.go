package handler

import (
	"net/http"

	"github.com/hangaroo/backend/internal/model"
	"github.com/hangaroo/backend/internal/service"
)

// UserHandler holds the HTTP handlers for accounts and sessions.
type UserHandler struct {
	svc *service.AccountService
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(svc *service.AccountService) *UserHandler {
	return &UserHandler{svc: svc}
}

// SignUp handles POST /user/signup
func (h *UserHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var params model.SignUpParams
	if err := decodeJSON(r, &params); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	account, err := h.svc.SignUp(r.Context(), &params)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

type tokenResponse struct {
	Token string         `json:"token"`
	User  *model.Account `json:"user"`
}

// SignIn handles POST /user/signin
func (h *UserHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var params model.SignInParams
	if err := decodeJSON(r, &params); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	token, account, err := h.svc.SignIn(r.Context(), &params)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token, User: account})
}

type googleSignInRequest struct {
	IDToken string `json:"idToken"`
}

// GoogleSignIn handles POST /auth/google
func (h *UserHandler) GoogleSignIn(w http.ResponseWriter, r *http.Request) {
	var req googleSignInRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	token, account, err := h.svc.GoogleSignIn(r.Context(), req.IDToken)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token, User: account})
}

// Profile handles GET /user/profile
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	account, err := h.svc.Profile(r.Context(), AccountID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

type pushTokenRequest struct {
	Token string `json:"token"`
}

// SetPushToken handles PUT /user/push-token
func (h *UserHandler) SetPushToken(w http.ResponseWriter, r *http.Request) {
	var req pushTokenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := h.svc.SetPushToken(r.Context(), AccountID(r), req.Token); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
