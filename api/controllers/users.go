package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/vastra-shop/backend/api/responses"
	userssvc "github.com/vastra-shop/backend/internal/users"
	"github.com/vastra-shop/backend/pkg/db/models"
	"github.com/vastra-shop/backend/pkg/logger"
)

type profileView struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func newProfileView(user *models.User) profileView {
	return profileView{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
	}
}

// Me returns the authenticated caller's account profile.
func Me(svc userssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := userIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		user, err := svc.ByID(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newProfileView(user))
	}
}
