package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"dms/internal/http/middleware"
	"dms/internal/model"
	"dms/internal/service"
)

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success   bool       `json:"success"`
	Message   string     `json:"message"`
	UserID    int64      `json:"userId"`
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt"`
}

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
}

type registerResponse struct {
	Success   bool       `json:"success"`
	Message   string     `json:"message"`
	Email     string     `json:"email"`
	RoleID    model.Role `json:"roleId"`
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt"`
}

type updateUserRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Role      int    `json:"role"`
}

// userProfile is the public view of a user.
type userProfile struct {
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Firstname string    `json:"firstname"`
	Lastname  string    `json:"lastname"`
	Joined    time.Time `json:"joined"`
}

// Login authenticates by username or email.
//
// @Summary  Log in
// @Tags     users
// @Accept   json
// @Produce  json
// @Param    body body loginRequest true "credentials"
// @Success  200 {object} loginResponse
// @Failure  400,401,404 {object} errorPayload
// @Router   /users/login [post]
func Login(svc service.AccountService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		sess, err := svc.Authenticate(c.UserContext(), service.Credentials{
			Username: req.Username,
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			return writeServiceError(c, err, "user not found")
		}
		return c.JSON(loginResponse{
			Success:   true,
			Message:   "login successful",
			UserID:    sess.User.ID,
			Email:     sess.User.Email,
			Role:      sess.User.Role,
			Token:     sess.Token,
			ExpiresAt: sess.ExpiresAt,
		})
	}
}

// Register creates a regular account and signs it in.
//
// @Summary  Sign up
// @Tags     users
// @Accept   json
// @Produce  json
// @Param    body body registerRequest true "new account"
// @Success  201 {object} registerResponse
// @Failure  400,409 {object} errorPayload
// @Router   /users [post]
func Register(svc service.AccountService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req registerRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		sess, err := svc.Register(c.UserContext(), service.Registration{
			Username:  req.Username,
			Email:     req.Email,
			Password:  req.Password,
			Firstname: req.Firstname,
			Lastname:  req.Lastname,
		})
		if err != nil {
			return writeServiceError(c, err, "user not found")
		}
		return c.Status(fiber.StatusCreated).JSON(registerResponse{
			Success:   true,
			Message:   "user created",
			Email:     sess.User.Email,
			RoleID:    sess.User.Role,
			Token:     sess.Token,
			ExpiresAt: sess.ExpiresAt,
		})
	}
}

// Logout revokes the bearer token of the request.
//
// @Summary   Log out
// @Tags      users
// @Security  BearerAuth
// @Success   200 {object} messageResponse
// @Failure   401 {object} errorPayload
// @Router    /users/logout [post]
func Logout(svc service.AccountService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.RevokeSession(c.UserContext(), middleware.TokenFromCtx(c)); err != nil {
			return writeServiceError(c, err, "session not found")
		}
		return c.JSON(messageResponse{Success: true, Message: "logged out"})
	}
}

// ListUsers returns a page of users. Admins only.
//
// @Summary   List users
// @Tags      users
// @Security  BearerAuth
// @Param     limit  query int false "page size"
// @Param     offset query int false "offset"
// @Success   200 {object} service.UserListResult
// @Failure   400,401,403 {object} errorPayload
// @Router    /users [get]
func ListUsers(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, code := pageQuery(c)
		if code != "" {
			return writeError(c, fiber.StatusBadRequest, code, "invalid pagination parameters")
		}
		res, err := svc.List(c.UserContext(), middleware.PrincipalFromCtx(c), limit, offset)
		if err != nil {
			return writeServiceError(c, err, "no users found")
		}
		return c.JSON(res)
	}
}

// GetUser returns the public profile of a user.
//
// @Summary   Get user
// @Tags      users
// @Security  BearerAuth
// @Param     id path int true "user id"
// @Success   200 {object} userProfile
// @Failure   400,401,403,404 {object} errorPayload
// @Router    /users/{id} [get]
func GetUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		u, err := svc.Get(c.UserContext(), middleware.PrincipalFromCtx(c), id)
		if err != nil {
			return writeServiceError(c, err, "user not found")
		}
		return c.JSON(userProfile{
			Username:  u.Username,
			Email:     u.Email,
			Firstname: u.Firstname,
			Lastname:  u.Lastname,
			Joined:    u.CreatedAt,
		})
	}
}

// UpdateUser changes the non-empty fields of a user.
//
// @Summary   Update user
// @Tags      users
// @Security  BearerAuth
// @Accept    json
// @Param     id   path int true "user id"
// @Param     body body updateUserRequest true "fields to change"
// @Success   200 {object} model.User
// @Failure   400,401,403,404,409 {object} errorPayload
// @Router    /users/{id} [put]
func UpdateUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var req updateUserRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		u, err := svc.Update(c.UserContext(), middleware.PrincipalFromCtx(c), id, service.UserUpdate{
			Username:  req.Username,
			Email:     req.Email,
			Password:  req.Password,
			Firstname: req.Firstname,
			Lastname:  req.Lastname,
			Role:      model.Role(req.Role),
		})
		if err != nil {
			return writeServiceError(c, err, "user not found")
		}
		return c.JSON(u)
	}
}

// DeleteUser removes a user together with their documents.
//
// @Summary   Delete user
// @Tags      users
// @Security  BearerAuth
// @Param     id path int true "user id"
// @Success   200 {object} messageResponse
// @Failure   400,401,403,404 {object} errorPayload
// @Router    /users/{id} [delete]
func DeleteUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), middleware.PrincipalFromCtx(c), id); err != nil {
			return writeServiceError(c, err, "user not found")
		}
		return c.JSON(messageResponse{Success: true, Message: "user deleted"})
	}
}
