package middleware

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"github.com/InkAurora/educblue-sub001/config"
)

// JWTMiddleware checks for a valid bearer token. Missing or expired
// credentials answer 401 with a login redirect that preserves the originally
// requested path, so the client can return here after signing in.
func JWTMiddleware(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return LoginRedirect(c, "Missing or invalid Authorization header")
	}

	tokenString := authHeader[len("Bearer "):]

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.AppConfig.JWTKey), nil
	})
	if err != nil || !token.Valid {
		return LoginRedirect(c, "Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return LoginRedirect(c, "Invalid token payload")
	}

	// The subject doubles as the session key; older tokens carry userId
	// instead of sub, sometimes as a JSON number.
	userKey, _ := claims["sub"].(string)
	if userKey == "" {
		switch v := claims["userId"].(type) {
		case string:
			userKey = v
		case float64:
			userKey = strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	if userKey == "" {
		return LoginRedirect(c, "Invalid token payload")
	}

	c.Locals("userKey", userKey)
	c.Locals("token", tokenString)
	return c.Next()
}

// LoginRedirect is the 401 shape for unauthenticated requests: the client
// clears its stored credentials, navigates to /login, and comes back to
// "from" afterwards.
func LoginRedirect(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"status":   false,
		"message":  message,
		"redirect": "/login",
		"from":     c.OriginalURL(),
	})
}

// JsonResponse is the shared response envelope.
func JsonResponse(c *fiber.Ctx, statusCode int, status bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

// ValidationErrorResponse reports request-shape validation failures.
func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Validation failed!", errors)
}
