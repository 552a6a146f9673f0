package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	oapimiddleware "github.com/oapi-codegen/nethttp-middleware"
	"go.uber.org/zap"

	"github.com/proptrack/proptrack/platform/go/access"
	platformauth "github.com/proptrack/proptrack/platform/go/auth"
	"github.com/proptrack/proptrack/platform/go/entity"
	"github.com/proptrack/proptrack/platform/go/problem"
)

var (
	errMissingPrincipal = errors.New("authentication required")
	errRoleNotGranted   = errors.New("role not granted")
)

// ValidateAuthenticationViaSwagger enforces the bearerAuth requirement declared in the contract.
// Operations list the roles they accept as security scopes; an empty scope list accepts any
// authenticated principal.
func ValidateAuthenticationViaSwagger(ctx context.Context, input *openapi3filter.AuthenticationInput) error {
	if input == nil || input.SecuritySchemeName != "bearerAuth" {
		return nil
	}

	r := input.RequestValidationInput.Request
	if r == nil {
		return fmt.Errorf("no request in validation input")
	}

	principal := platformauth.PrincipalFromContext(r.Context())
	if principal == nil {
		return errMissingPrincipal
	}

	if len(input.Scopes) == 0 {
		return nil
	}
	for _, scope := range input.Scopes {
		if entity.Role(scope) == principal.Role {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", errRoleNotGranted, principal.Role)
}

// SpecValidator builds request validation middleware for an OpenAPI document. Failures are
// reported as problem details; authentication failures keep their 401/403 semantics.
func SpecValidator(spec *openapi3.T, logger *zap.Logger) func(http.Handler) http.Handler {
	return oapimiddleware.OapiRequestValidatorWithOptions(spec, &oapimiddleware.Options{
		Options: openapi3filter.Options{
			AuthenticationFunc: ValidateAuthenticationViaSwagger,
		},
		ErrorHandler: func(w http.ResponseWriter, message string, statusCode int) {
			if logger != nil {
				logger.Debug("request rejected by contract", zap.Int("status", statusCode), zap.String("message", message))
			}
			problem.Write(w, contractProblem(message, statusCode))
		},
	})
}

func contractProblem(message string, statusCode int) problem.Details {
	if statusCode == http.StatusUnauthorized && strings.Contains(message, errRoleNotGranted.Error()) {
		statusCode = http.StatusForbidden
	}

	switch statusCode {
	case http.StatusUnauthorized:
		return problem.Unauthenticated(message, access.LoginPath)
	case http.StatusForbidden:
		return problem.New("Forbidden", message, problem.TypeForbidden, statusCode, nil)
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return problem.New("Resource not found", message, problem.TypeNotFound, statusCode, nil)
	default:
		return problem.New("Invalid request", message, problem.TypeValidation, http.StatusBadRequest, nil)
	}
}
