package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/policynav/authcore/internal/apperrors"
	"github.com/policynav/authcore/internal/handlers/render"
	"github.com/policynav/authcore/internal/models"
)

// authService is the narrow surface the presentation layer calls into
type authService interface {
	SignUp(ctx context.Context, username, password string, questionID models.QuestionID, answer string) (models.User, error)
	Login(ctx context.Context, username, password string) (models.IssuedToken, error)
	ValidateSession(ctx context.Context, token string) (username string, err error)
	Logout(ctx context.Context, token string)
	ResetPassword(ctx context.Context, username, answer, newPassword string) error
	SecurityQuestion(ctx context.Context, username string) (models.SecurityQuestion, error)
}

type AuthHandler struct {
	auth authService
}

func NewAuth(auth authService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /signup", h.signup)
	mux.HandleFunc("POST /login", h.login)
	mux.HandleFunc("POST /session", h.session)
	mux.HandleFunc("POST /logout", h.logout)
	mux.HandleFunc("POST /reset-password", h.resetPassword)
	mux.HandleFunc("POST /question", h.question)
	mux.HandleFunc("GET /questions", h.questions)

	return mux
}

func (h *AuthHandler) signup(w http.ResponseWriter, r *http.Request) {
	type SignupRequest struct {
		Username           string `json:"username" validate:"required,min=3,max=50"`
		Password           string `json:"password" validate:"required,min=8"`
		SecurityQuestionID string `json:"security_question_id" validate:"required"`
		SecurityAnswer     string `json:"security_answer" validate:"required"`
	}
	type SignupSuccessResponse struct {
		Message string `json:"message"`
	}

	data, err := render.BindAndValidate[SignupRequest](w, r)
	if err != nil {
		return
	}

	_, err = h.auth.SignUp(r.Context(),
		data.Username, data.Password,
		models.QuestionID(data.SecurityQuestionID), data.SecurityAnswer,
	)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUserAlreadyExists):
			render.ServiceError(w, "User already exists", http.StatusConflict)
		case errors.Is(err, apperrors.ErrInvalidUsername):
			render.ServiceError(w, "Username is invalid", http.StatusBadRequest)
		case errors.Is(err, apperrors.ErrWeakPassword):
			render.ServiceError(w, "Password is too weak", http.StatusBadRequest)
		case errors.Is(err, apperrors.ErrInvalidQuestion):
			render.ServiceError(w, "Unknown security question", http.StatusBadRequest)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, SignupSuccessResponse{Message: "User registered successfully"})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	type LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	type LoginSuccessResponse struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
	}

	data, err := render.BindAndValidate[LoginRequest](w, r)
	if err != nil {
		return
	}

	token, err := h.auth.Login(r.Context(), data.Username, data.Password)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			render.ServiceError(w, "Invalid credentials", http.StatusUnauthorized)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, LoginSuccessResponse{Token: token.Value, ExpiresAt: token.ExpiresAt})
}

func (h *AuthHandler) session(w http.ResponseWriter, r *http.Request) {
	type SessionRequest struct {
		Token string `json:"token" validate:"required"`
	}
	type SessionSuccessResponse struct {
		Username string `json:"username"`
	}

	data, err := render.BindAndValidate[SessionRequest](w, r)
	if err != nil {
		return
	}

	username, err := h.auth.ValidateSession(r.Context(), data.Token)
	if err != nil {
		// Single opaque outcome whatever went wrong with the token
		render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	render.JSON(w, SessionSuccessResponse{Username: username})
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	type LogoutRequest struct {
		Token string `json:"token" validate:"required"`
	}
	type LogoutSuccessResponse struct {
		Message string `json:"message"`
	}

	data, err := render.BindAndValidate[LogoutRequest](w, r)
	if err != nil {
		return
	}

	// Always ok: an unusable token has nothing left to invalidate
	h.auth.Logout(r.Context(), data.Token)

	render.JSON(w, LogoutSuccessResponse{Message: "Logged out"})
}

func (h *AuthHandler) resetPassword(w http.ResponseWriter, r *http.Request) {
	type ResetRequest struct {
		Username       string `json:"username" validate:"required"`
		SecurityAnswer string `json:"security_answer" validate:"required"`
		NewPassword    string `json:"new_password" validate:"required,min=8"`
	}
	type ResetSuccessResponse struct {
		Message string `json:"message"`
	}

	data, err := render.BindAndValidate[ResetRequest](w, r)
	if err != nil {
		return
	}

	err = h.auth.ResetPassword(r.Context(), data.Username, data.SecurityAnswer, data.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			render.ServiceError(w, "Invalid credentials", http.StatusUnauthorized)
		case errors.Is(err, apperrors.ErrWeakPassword):
			render.ServiceError(w, "Password is too weak", http.StatusBadRequest)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, ResetSuccessResponse{Message: "Password updated successfully"})
}

func (h *AuthHandler) question(w http.ResponseWriter, r *http.Request) {
	type QuestionRequest struct {
		Username string `json:"username" validate:"required"`
	}
	type QuestionSuccessResponse struct {
		QuestionID string `json:"question_id"`
		Question   string `json:"question"`
	}

	data, err := render.BindAndValidate[QuestionRequest](w, r)
	if err != nil {
		return
	}

	question, err := h.auth.SecurityQuestion(r.Context(), data.Username)
	if err != nil {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.JSON(w, QuestionSuccessResponse{QuestionID: string(question.ID), Question: question.Text})
}

func (h *AuthHandler) questions(w http.ResponseWriter, r *http.Request) {
	type QuestionItem struct {
		QuestionID string `json:"question_id"`
		Question   string `json:"question"`
	}
	type QuestionsResponse struct {
		Questions []QuestionItem `json:"questions"`
	}

	all := models.Questions()
	resp := QuestionsResponse{Questions: make([]QuestionItem, 0, len(all))}
	for _, q := range all {
		resp.Questions = append(resp.Questions, QuestionItem{QuestionID: string(q.ID), Question: q.Text})
	}

	render.JSON(w, resp)
}
