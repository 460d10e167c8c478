package handlers

import (
	"fmt"
	"log"

	"smartagri/config"
	"smartagri/middleware"
	"smartagri/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

const (
	msgInvalidCredentials   = "Invalid credentials. Use demo/demo for demo mode."
	msgUnauthorized         = "Unauthorized"
	msgRegistrationDisabled = "Registration disabled. Use demo/demo to login."
)

// DemoAuth is the stand-in credential check. It holds one fixed account and
// one static token; there is no user store behind it.
type DemoAuth struct {
	username     string
	passwordHash []byte
	token        string
	user         models.DemoUser
}

// NewDemoAuth prepares the demo account and signs its token once.
func NewDemoAuth(cfg *config.Config) (*DemoAuth, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash demo password: %w", err)
	}

	user := models.DemoAccount(cfg.DemoUsername)
	token, err := createDemoToken(user, cfg.TokenSecret)
	if err != nil {
		return nil, fmt.Errorf("sign demo token: %w", err)
	}

	return &DemoAuth{
		username:     cfg.DemoUsername,
		passwordHash: hash,
		token:        token,
		user:         user,
	}, nil
}

// Token returns the static demo token.
func (a *DemoAuth) Token() string { return a.token }

// HandleLogin checks the demo pair and returns the static token.
// POST /api/auth/login
func (a *DemoAuth) HandleLogin(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("[AUTH] Unparseable login body: %v", err)
		return c.Status(fiber.StatusUnauthorized).JSON(models.Fail(fiber.StatusUnauthorized, msgInvalidCredentials))
	}

	if !a.checkCredentials(req.Username, req.Password) {
		log.Printf("[AUTH] Rejected login for %q", req.Username)
		return c.Status(fiber.StatusUnauthorized).JSON(models.Fail(fiber.StatusUnauthorized, msgInvalidCredentials))
	}

	return c.JSON(models.LoginResponse{Success: true, Token: a.token, User: a.user})
}

// HandleProfile returns the demo user for any non-empty bearer token.
// GET /api/auth/profile
func (a *DemoAuth) HandleProfile(c *fiber.Ctx) error {
	if middleware.BearerToken(c) == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(models.Fail(fiber.StatusUnauthorized, msgUnauthorized))
	}
	return c.JSON(models.ProfileResponse{Success: true, User: a.user})
}

// HandleRegister is permanently disabled.
// POST /api/auth/register
func HandleRegister(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotImplemented).JSON(models.Fail(fiber.StatusNotImplemented, msgRegistrationDisabled))
}

func (a *DemoAuth) checkCredentials(username, password string) bool {
	if username == "" || username != a.username {
		return false
	}
	return bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)) == nil
}

// --- Helper Functions ---

func createDemoToken(user models.DemoUser, secret string) (string, error) {
	claims := models.DemoClaims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: user.ID,
			Issuer:  "smartagri-gateway",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
