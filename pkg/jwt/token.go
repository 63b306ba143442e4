package jwtPkg

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

const (
	TicketSecretEnv  = "PASSAGE_TICKET_SECRET"
	DefaultTicketTTL = 15 * time.Minute

	passageClaim = "passage_id"
	scopeClaim   = "scope"
	playScope    = "passage:play"
)

var (
	ErrMissingTicket = errors.New("missing passage ticket")
	ErrInvalidTicket = errors.New("invalid passage ticket")
	ErrTicketPassage = errors.New("ticket was issued for another passage")
)

// SignTicket issues a short-lived token that lets its bearer open a playback session
// for one passage.
func SignTicket(passageID string, ttl time.Duration) (string, int64, error) {
	if ttl <= 0 {
		ttl = DefaultTicketTTL
	}
	expiredAt := time.Now().Add(ttl).Unix()

	secret := os.Getenv(TicketSecretEnv)
	if secret == "" {
		return "", 0, fmt.Errorf("%s not set", TicketSecretEnv)
	}

	claims := jwt.MapClaims{
		"exp":        expiredAt,
		passageClaim: passageID,
		scopeClaim:   playScope,
	}

	logrus.WithField("passage_id", passageID).Debug("Signing passage ticket")

	to := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ticket, err := to.SignedString([]byte(secret))
	if err != nil {
		logrus.WithError(err).Error("Failed to sign passage ticket")
		return "", 0, err
	}

	return ticket, expiredAt, nil
}

// VerifyTicket checks the signature, expiry and scope of a ticket and returns the
// passage it grants.
func VerifyTicket(ticket string) (string, error) {
	log := logrus.WithField("func", "VerifyTicket")

	ticket = strings.TrimSpace(ticket)
	if ticket == "" {
		return "", ErrMissingTicket
	}

	secret := os.Getenv(TicketSecretEnv)
	if secret == "" {
		log.Error("Ticket secret environment variable not set")
		return "", errors.New("ticket secret not configured")
	}

	token, err := jwt.Parse(ticket, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			log.WithField("method", token.Header["alg"]).Error("Unexpected signing method")
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		log.WithError(err).Warn("Failed to parse passage ticket")
		return "", fmt.Errorf("%w: %w", ErrInvalidTicket, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidTicket
	}
	if scope, _ := claims[scopeClaim].(string); scope != playScope {
		return "", fmt.Errorf("%w: wrong scope", ErrInvalidTicket)
	}
	passageID, _ := claims[passageClaim].(string)
	if passageID == "" {
		return "", fmt.Errorf("%w: no passage", ErrInvalidTicket)
	}

	return passageID, nil
}

// TicketFromRequest reads the ticket from the token query parameter, which browsers
// can set on a websocket URL, or else from a Bearer Authorization header.
func TicketFromRequest(c *fiber.Ctx) string {
	if t := c.Query("token"); t != "" {
		return t
	}
	header := c.Get("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}
