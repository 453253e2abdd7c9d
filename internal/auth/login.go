package auth

import (
	"crypto/subtle"
	"fmt"
	"log/slog"
	"strings"

	"bullion-backend/internal/config"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	ID       string `json:"id"`
	Password string `json:"password"`
}

// Authenticator checks the single configured operator login. Only a bcrypt
// hash of the password is kept in memory.
type Authenticator struct {
	loginID      string
	passwordHash []byte
	secret       []byte
	cfg          *config.Config
	log          *slog.Logger
}

func NewAuthenticator(cfg *config.Config, log *slog.Logger) (*Authenticator, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.LoginPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash login password: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Authenticator{
		loginID:      cfg.LoginID,
		passwordHash: hash,
		secret:       []byte(cfg.JWTSecret),
		cfg:          cfg,
		log:          log,
	}, nil
}

func (a *Authenticator) Check(id, password string) bool {
	idOK := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(id)), []byte(a.loginID)) == 1
	pwOK := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)) == nil
	return idOK && pwOK
}

func (a *Authenticator) LoginHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		if !a.Check(body.ID, body.Password) {
			a.log.Warn("login rejected", "ip", c.IP())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Invalid credentials",
			})
		}

		token, err := GenerateToken(a.secret, a.loginID, a.cfg.TokenTTL)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not issue token")
		}

		return c.JSON(fiber.Map{
			"success": true,
			"token":   token,
		})
	}
}
