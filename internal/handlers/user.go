package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/facesave/gobackend/internal/models"
	"github.com/facesave/gobackend/internal/services"
)

type UserHandler struct {
	service *services.UserService
	auth    *Auth
}

func NewUserHandler(service *services.UserService, auth *Auth) *UserHandler {
	return &UserHandler{service: service, auth: auth}
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName string `json:"fullname"`
		Email    string `json:"email"`
		Pin      string `json:"pin"`
		Image    string `json:"image"` // base64-encoded webcam frame
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
		return
	}

	var image []byte
	if req.Image != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.Image)
		if err != nil {
			http.Error(w, `{"error":"image must be base64-encoded"}`, http.StatusBadRequest)
			return
		}
		image = decoded
	}

	id, err := h.service.Register(r.Context(), req.FullName, req.Email, req.Pin, image)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"id": id})
}

func (h *UserHandler) LoginFace(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Image string `json:"image"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
		return
	}

	image, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		http.Error(w, `{"error":"image must be base64-encoded"}`, http.StatusBadRequest)
		return
	}

	user, err := h.service.LoginByFace(r.Context(), req.Email, image)
	if err != nil {
		h.writeLoginError(w, err)
		return
	}
	h.writeToken(w, user)
}

func (h *UserHandler) LoginPin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Pin   string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
		return
	}

	user, err := h.service.LoginByPIN(r.Context(), req.Email, req.Pin)
	if err != nil {
		h.writeLoginError(w, err)
		return
	}
	h.writeToken(w, user)
}

func (h *UserHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authorizeOwner(w, r)
	if !ok {
		return
	}

	balance, err := h.service.Balance(r.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			http.Error(w, `{"error":"user not found"}`, http.StatusNotFound)
			return
		}
		http.Error(w, `{"error":"Failed to fetch balance"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]float64{"balance": balance})
}

func (h *UserHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authorizeOwner(w, r)
	if !ok {
		return
	}

	txs, err := h.service.Transactions(r.Context(), userID)
	if err != nil {
		http.Error(w, `{"error":"Failed to fetch transactions"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(txs)
}

func (h *UserHandler) GetPayments(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authorizeOwner(w, r)
	if !ok {
		return
	}

	payments, err := h.service.Payments(r.Context(), userID)
	if err != nil {
		http.Error(w, `{"error":"Failed to fetch payments"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payments)
}

// authorizeOwner verifies the token and checks that the {userID} route
// variable belongs to the authenticated user.
func (h *UserHandler) authorizeOwner(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, err := h.auth.VerifyRequest(r)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusUnauthorized)
		return "", false
	}
	authenticatedID, ok := userIDFromClaims(claims)
	if !ok {
		http.Error(w, `{"error":"invalid user_id in token"}`, http.StatusUnauthorized)
		return "", false
	}

	requestedID := mux.Vars(r)["userID"]
	if requestedID == "" {
		http.Error(w, `{"error":"User ID is required"}`, http.StatusBadRequest)
		return "", false
	}
	if requestedID != authenticatedID {
		http.Error(w, `{"error":"Unauthorized to view this user"}`, http.StatusForbidden)
		return "", false
	}
	return requestedID, true
}

func (h *UserHandler) writeLoginError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrFaceMismatch):
		http.Error(w, `{"error":"invalid credentials"}`, http.StatusUnauthorized)
	case errors.Is(err, services.ErrFaceLoginUnavailable):
		http.Error(w, `{"error":"face login is not available"}`, http.StatusServiceUnavailable)
	default:
		http.Error(w, `{"error":"login failed"}`, http.StatusInternalServerError)
	}
}

func (h *UserHandler) writeToken(w http.ResponseWriter, user *models.User) {
	token, err := h.auth.IssueToken(user)
	if err != nil {
		http.Error(w, `{"error":"failed to issue token"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"token":   token,
		"user_id": user.ID.Hex(),
	})
}
