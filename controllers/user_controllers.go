package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-tables/middlewares"
	"github.com/yeremiapane/restaurant-tables/models"
	"github.com/yeremiapane/restaurant-tables/services"
	"github.com/yeremiapane/restaurant-tables/utils"
)

// TokenRevoker invalidates a session token before it expires.
type TokenRevoker interface {
	Revoke(token string, expiresAt time.Time)
}

type UserController struct {
	Accounts services.AccountService
	Tokens   TokenRevoker
}

func NewUserController(accounts services.AccountService, tokens TokenRevoker) *UserController {
	return &UserController{Accounts: accounts, Tokens: tokens}
}

type userRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role"` // admin, manager, server
}

func (r userRequest) input() services.RegisterInput {
	return services.RegisterInput{Name: r.Name, Email: r.Email, Password: r.Password, Role: r.Role}
}

// Register -> public sign-up, always as a server
func (uc *UserController) Register(c *gin.Context) {
	var req userRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := uc.Accounts.Register(c.Request.Context(), req.input())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusCreated, "User registered successfully", gin.H{"user": user})
}

// CreateUser -> admin creates a staff account with any role
func (uc *UserController) CreateUser(c *gin.Context) {
	var req userRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := uc.Accounts.CreateUser(c.Request.Context(), req.input())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.InfoLogger.Printf("Admin %d created user %s (role=%s)", c.GetUint(middlewares.ContextUserID), user.Email, user.Role)
	utils.RespondMessage(c, http.StatusCreated, "User created successfully", gin.H{"user": user})
}

// Login -> returns a JWT
func (uc *UserController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if !bindJSON(c, &input) {
		return
	}

	result, err := uc.Accounts.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondMessage(c, http.StatusOK, "Login successful", gin.H{
		"token": result.Token,
		"user":  result.User,
	})
}

// Logout revokes the presented token until it would have expired.
func (uc *UserController) Logout(c *gin.Context) {
	token := c.GetString(middlewares.ContextToken)
	expiry, ok := c.Get(middlewares.ContextTokenExpiry)
	exp, _ := expiry.(time.Time)
	if !ok || exp.IsZero() {
		exp = time.Now().Add(24 * time.Hour)
	}
	uc.Tokens.Revoke(token, exp)

	utils.InfoLogger.Printf("User %d logged out", c.GetUint(middlewares.ContextUserID))
	utils.RespondMessage(c, http.StatusOK, "Logged out successfully", nil)
}

func (uc *UserController) GetProfile(c *gin.Context) {
	userID := c.GetUint(middlewares.ContextUserID)
	if userID == 0 {
		utils.RespondError(c, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	user, err := uc.Accounts.Profile(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, user)
}

// GetServers lists staff with the server role, for picking a table assignee.
func (uc *UserController) GetServers(c *gin.Context) {
	users, err := uc.Accounts.ListUsers(c.Request.Context(), models.RoleServer)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, users)
}

// GetAllUsers is admin only; ?role narrows the list.
func (uc *UserController) GetAllUsers(c *gin.Context) {
	users, err := uc.Accounts.ListUsers(c.Request.Context(), c.Query("role"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, users)
}
