package auth

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusgig/campusgig/internal/alerts"
	"github.com/campusgig/campusgig/internal/db"
)

type SignupRequest struct {
	FullName   string `json:"full_name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6"`
	Role       string `json:"role"`
	University string `json:"university"`
}

type SignupResponse struct {
	Token string `json:"token"`
}

// ===== Signup =====
func Signup(c echo.Context) error {
	req := new(SignupRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.FullName == "" || req.Email == "" || len(req.Password) < 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "full_name, email and a password of at least 6 characters are required"})
	}

	// Self-service signup only hands out marketplace roles; admin is
	// granted through the bootstrap endpoint or the promote utility.
	role := req.Role
	if role == "" {
		role = "student"
	}
	if role != "student" && role != "client" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be 'student' or 'client'"})
	}

	// Hash password
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	var userID string
	err = db.Conn.QueryRow(context.Background(), `
		INSERT INTO profiles (id, email, password, full_name, role, university)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, uuid.New().String(), req.Email, string(hashed), req.FullName, role, req.University).Scan(&userID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email already registered"})
	}

	// Welcome email is best-effort; signup succeeds regardless
	_ = alerts.EnqueueWelcomeEmail(userID, req.Email, req.FullName)

	// JWT with user_id
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(72 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token generation failed"})
	}

	return c.JSON(http.StatusOK, SignupResponse{Token: signed})
}
