package server

import (
	"inkwell/internal/identity"
	"inkwell/internal/middleware"
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ListUsers handles GET /admin/users
// @Summary List all accounts known to the identity provider and the local store
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{success=bool,data=object}
// @Failure 401 {object} object{error=string}
// @Failure 403 {object} models.ErrorResponse
// @Router /admin/users [get]
func (s *Server) ListUsers(c *fiber.Ctx) error {
	ctx := c.Context()

	providerUsers, err := s.identity.ListUsers(ctx, identity.ListUsersParams{PerPage: 1000})
	if err != nil {
		middleware.IdentityProviderErrors.WithLabelValues("list_users").Inc()
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	localUsers, err := s.userRepo.List(ctx)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	emails := make([]string, 0, len(providerUsers))
	for _, u := range providerUsers {
		emails = append(emails, u.Email)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"supabaseUsers": providerUsers,
			"prismaUsers":   localUsers,
			"totalUsers":    len(providerUsers),
			"userEmails":    emails,
		},
	})
}

// GetUserByEmail handles GET /admin/user/:email
// @Summary Inspect a single account across both user stores
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param email path string true "Account email"
// @Success 200 {object} object{success=bool,data=object}
// @Failure 401 {object} object{error=string}
// @Failure 403 {object} models.ErrorResponse
// @Router /admin/user/{email} [get]
func (s *Server) GetUserByEmail(c *fiber.Ctx) error {
	ctx := c.Context()
	email := c.Params("email")

	providerMatches, err := s.identity.ListUsersByEmail(ctx, email)
	if err != nil {
		middleware.IdentityProviderErrors.WithLabelValues("list_users").Inc()
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	var providerUser *identity.User
	if len(providerMatches) > 0 {
		providerUser = &providerMatches[0]
	}

	localUser, err := s.userRepo.GetByEmailWithActivity(ctx, email)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	var activity any
	if localUser != nil {
		activity = fiber.Map{
			"totalPosts":    len(localUser.Posts),
			"totalComments": len(localUser.Comments),
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"supabaseUser": providerUser,
			"prismaUser":   localUser,
			"userActivity": activity,
		},
	})
}
