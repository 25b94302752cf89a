package server

import (
	"errors"

	"inkwell/internal/identity"
	"inkwell/internal/middleware"
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// userWithAuth is the user payload returned by signup and signin: the local
// row merged with the provider account under "auth".
type userWithAuth struct {
	models.User
	Auth *identity.User `json:"auth"`
}

// Signup handles POST /signup
// @Summary Register a new account
// @Description Creates an identity provider account and the matching local user row
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Signup request"
// @Success 200 {object} object{success=bool,user=object}
// @Failure 400 {object} models.ErrorResponse
// @Router /signup [post]
func (s *Server) Signup(c *fiber.Ctx) error {
	ctx := c.Context()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Email == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Email and password are required"))
	}

	// Check the provider's admin listing first; it is authoritative for
	// accounts that may not have a local row yet.
	existing, err := s.identity.ListUsersByEmail(ctx, req.Email)
	if err != nil {
		middleware.IdentityProviderErrors.WithLabelValues("list_users").Inc()
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	if len(existing) > 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewDuplicateUserError())
	}

	// Defense in depth: the local store can hold a row the provider lost.
	localExisting, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if localExisting != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewDuplicateUserError())
	}

	providerUser, err := s.identity.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		middleware.IdentityProviderErrors.WithLabelValues("signup").Inc()
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	// The local row takes the provider-issued id; it is never generated here.
	user := &models.User{
		ID:    providerUser.ID,
		Email: req.Email,
	}
	if createErr := s.userRepo.Create(ctx, user); createErr != nil {
		var appErr *models.AppError
		if errors.As(createErr, &appErr) && appErr.Code == models.CodeDuplicateUser {
			return models.RespondWithError(c, fiber.StatusBadRequest, createErr)
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, createErr)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user":    userWithAuth{User: *user, Auth: providerUser},
	})
}

// Signin handles POST /signin
// @Summary Sign in with email and password
// @Description Verifies credentials against the identity provider and returns a session. Creates the local user row if it is missing.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Signin credentials"
// @Success 200 {object} object{success=bool,session=object,user=object}
// @Failure 500 {object} models.ErrorResponse
// @Router /signin [post]
func (s *Server) Signin(c *fiber.Ctx) error {
	ctx := c.Context()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Email == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Email and password are required"))
	}

	// Provider rejections (including bad credentials) surface as 500 with
	// the provider's message. Kept for compatibility with existing clients.
	session, err := s.identity.SignInWithPassword(ctx, req.Email, req.Password)
	if err != nil {
		middleware.IdentityProviderErrors.WithLabelValues("signin").Inc()
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	user, err := s.userRepo.GetByID(ctx, session.User.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if user == nil {
		// Self-healing join: the provider knows this account but the local
		// store does not, e.g. it was created directly through the provider.
		user = &models.User{
			ID:    session.User.ID,
			Email: session.User.Email,
		}
		if createErr := s.userRepo.Create(ctx, user); createErr != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, createErr)
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"msg":     "Signed in successfully",
		"session": session,
		"user":    userWithAuth{User: *user, Auth: &session.User},
	})
}
