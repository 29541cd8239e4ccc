package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"chessrules/internal/core"
	"chessrules/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// TokenValidator validates bearer tokens
type TokenValidator func(token string) (subject string, claims map[string]any, err error)

// contentTypeValidator ensures POST requests have application/json
func contentTypeValidator(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodPost {
		contentType := c.Get("Content-Type")
		if contentType != "" && !strings.HasPrefix(contentType, fiber.MIMEApplicationJSON) {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(core.ErrorResponse{
				Error:   "unsupported media type",
				Code:    core.ErrCodeInvalidContent,
				Details: "Content-Type must be application/json",
			})
		}
	}
	return c.Next()
}

// validationMiddleware parses and validates POST bodies, storing the result in Locals
func validationMiddleware(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodPost {
		return c.Next()
	}

	var requestType any
	path := c.Path()
	switch {
	case strings.HasSuffix(path, "/session"):
		requestType = &core.NewSessionRequest{}
	case strings.HasSuffix(path, "/click"):
		requestType = &core.ClickRequest{}
	default:
		return c.Next()
	}

	if len(c.Body()) > 0 {
		if err := c.BodyParser(requestType); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
				Error:   "invalid request body",
				Code:    core.ErrCodeInvalidRequest,
				Details: err.Error(),
			})
		}
	}

	if err := validate.Struct(requestType); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "validation failed",
			Code:    core.ErrCodeInvalidRequest,
			Details: describeValidation(verrs),
		})
	}

	c.Locals("validatedBody", requestType)
	return c.Next()
}

// describeValidation turns validator errors into a readable sentence list
func describeValidation(errs validator.ValidationErrors) string {
	var details strings.Builder
	for _, err := range errs {
		if details.Len() > 0 {
			details.WriteString("; ")
		}
		field := strings.ToLower(err.Field())
		switch err.Tag() {
		case "required":
			details.WriteString(fmt.Sprintf("%s is required", field))
		case "oneof":
			details.WriteString(fmt.Sprintf("%s must be one of [%s]", field, err.Param()))
		case "min":
			if err.Type().Kind() == reflect.String {
				details.WriteString(fmt.Sprintf("%s must be at least %s characters", field, err.Param()))
			} else {
				details.WriteString(fmt.Sprintf("%s must be at least %s", field, err.Param()))
			}
		case "max":
			if err.Type().Kind() == reflect.String {
				details.WriteString(fmt.Sprintf("%s must be at most %s characters", field, err.Param()))
			} else {
				details.WriteString(fmt.Sprintf("%s must be at most %s", field, err.Param()))
			}
		default:
			details.WriteString(fmt.Sprintf("%s failed %s validation", field, err.Tag()))
		}
	}
	return details.String()
}

// AuthRequired enforces bearer token authentication
func AuthRequired(validateToken TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractBearerToken(c.Get("Authorization"))
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(core.ErrorResponse{
				Error: "missing authorization token",
				Code:  core.ErrCodeUnauthorized,
			})
		}

		subject, _, err := validateToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(core.ErrorResponse{
				Error: "invalid or expired token",
				Code:  core.ErrCodeUnauthorized,
			})
		}

		c.Locals("sessionID", subject)
		return c.Next()
	}
}

// SessionOwner rejects tokens issued for a session that is no longer active
func SessionOwner(svc *service.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		subject, _ := c.Locals("sessionID").(string)
		if err := svc.Authorize(subject); err != nil {
			if errors.Is(err, core.ErrNoSession) {
				return sessionNotFound(c)
			}
			return staleToken(c)
		}
		return c.Next()
	}
}

func staleToken(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(core.ErrorResponse{
		Error: "token is not valid for the active session",
		Code:  core.ErrCodeUnauthorized,
	})
}

// extractBearerToken extracts the token from an Authorization header
func extractBearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimPrefix(header, prefix)
}

// customErrorHandler provides consistent error responses
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	response := core.ErrorResponse{
		Error: "internal server error",
		Code:  core.ErrCodeInternalError,
	}

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		response.Error = e.Message

		switch code {
		case fiber.StatusNotFound:
			response.Code = core.ErrCodeNotFound
		case fiber.StatusBadRequest:
			response.Code = core.ErrCodeInvalidRequest
		case fiber.StatusTooManyRequests:
			response.Code = core.ErrCodeRateLimitExceeded
		}
	}

	return c.Status(code).JSON(response)
}

func sessionNotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(core.ErrorResponse{
		Error: "no active session",
		Code:  core.ErrCodeSessionNotFound,
	})
}
