package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kmori/junban/internal/config"
	"github.com/kmori/junban/internal/utils"
)

// AuthHandler implements the session gate's HTTP surface: exchanging the
// shared secret for a session token. There are no user accounts; one secret
// gates the whole register.
type AuthHandler struct {
	Cfg config.Config
}

func NewAuthHandler(cfg config.Config) *AuthHandler {
	return &AuthHandler{Cfg: cfg}
}

type sessionReq struct {
	Secret string `json:"secret"`
}

type sessionResp struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// CreateSession verifies the supplied shared secret and issues a session
// token. In open mode (no secret configured for the deployment) a token is
// issued unconditionally so clients need no special-casing.
func (h *AuthHandler) CreateSession(c echo.Context) error {
	var req sessionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if !h.Cfg.OpenMode() && !utils.VerifySecret(req.Secret, h.Cfg.SharedSecret, h.Cfg.SharedSecretHash) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid secret"})
	}
	tok, err := utils.NewSessionToken(h.Cfg.SessionSecret, h.Cfg.SessionTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue session failed"})
	}
	return c.JSON(http.StatusCreated, sessionResp{Token: tok.Token, Expires: tok.Exp})
}
