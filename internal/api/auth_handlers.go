package api

import (
	"net/http"
)

type registerRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=72"`
	Email    string `json:"email" validate:"omitempty,email"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type meResponse struct {
	ID       uint    `json:"id"`
	Username string  `json:"username"`
	Email    *string `json:"email"`
}

type loginResponse struct {
	Message  string `json:"message"`
	Token    string `json:"token"`
	Username string `json:"username"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := h.bind(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	user, err := h.auth.Register(r.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	h.logger.InfoContext(r.Context(), "user registered", "user_id", user.ID, "username", user.Username)
	respondMessage(w, http.StatusCreated, "User registered successfully")
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := h.bind(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	sess, user, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, loginResponse{
		Message:  "Login successful",
		Token:    sess.Token,
		Username: user.Username,
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(tokenFromRequest(r)); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondMessage(w, http.StatusOK, "Logged out successfully")
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	userID, _ := currentUser(r)
	user, err := h.auth.CurrentUser(r.Context(), userID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, meResponse{ID: user.ID, Username: user.Username, Email: user.Email})
}
