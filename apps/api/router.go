package main

import (
	"context"
	"net/http"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/proptrack/proptrack/contracts"
	platformauth "github.com/proptrack/proptrack/platform/go/auth"
	"github.com/proptrack/proptrack/platform/go/entity"
	platformlogging "github.com/proptrack/proptrack/platform/go/logging"
	platformmiddleware "github.com/proptrack/proptrack/platform/go/middleware"
	"github.com/proptrack/proptrack/platform/go/problem"
)

const proptrackContract = "contracts/proptrack.yaml"

var swaggerLoaders = map[string]func() (*openapi3.T, error){
	proptrackContract: contracts.GetSwagger,
}

const readinessTimeout = 3 * time.Second

func newRouter(cfg config, deps *dependencies, logger *zap.Logger) http.Handler {
	rootRouter := chi.NewRouter()

	rootRouter.Use(
		chimw.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		chimw.Timeout(cfg.RequestTimeout),
		platformmiddleware.CORS(cfg.AllowedOrigins),
	)

	rootRouter.Use(platformlogging.RequestLogger(logger))

	rootRouter.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	rootRouter.Get("/readyz", readinessHandler(deps, logger))

	// ---- Swagger UI + OpenAPI JSON (public) ----
	registerDocsRoutes(rootRouter, logger)

	apiRouter := chi.NewRouter()
	apiRouter.Use(deps.authMiddleware)
	apiRouter.Use(platformauth.RequirePrincipal)
	apiRouter.Use(platformmiddleware.RequestTrace)

	validator := mustNewSpecValidator(logger, proptrackContract)

	apiRouter.Group(func(r chi.Router) {
		r.Use(validator)

		r.Get("/me", deps.users.UsersMe)
		r.Get("/dashboard", deps.dashboard.DashboardGet)
		r.Get("/properties", deps.properties.PropertiesList)
		r.Get("/payments", deps.payments.PaymentsList)
		r.Get("/payments/upcoming", deps.payments.PaymentsUpcoming)
		r.Get("/maintenance", deps.maintenance.MaintenanceList)
		r.Post("/maintenance", deps.maintenance.MaintenanceSubmit)
		r.Get("/maintenance/{requestId}", deps.maintenance.MaintenanceGet)
		r.Post("/maintenance/{requestId}/activities", deps.maintenance.MaintenanceAddActivity)
		r.Get("/communications", deps.communications.CommunicationsGet)
		r.Get("/notifications", deps.notifications.NotificationsList)
		r.Post("/notifications/{notificationId}/read", deps.notifications.NotificationsMarkRead)
		// Non-admins get the invitation result body rather than a generic 403.
		r.Post("/users/invitations", deps.users.UsersInvite)
	})

	apiRouter.Group(func(r chi.Router) {
		r.Use(platformauth.RequireRole(entity.RoleAdmin))
		r.Use(validator)

		r.Patch("/maintenance/{requestId}", deps.maintenance.MaintenanceUpdate)
		r.Get("/vendors", deps.maintenance.VendorsList)
		r.Get("/users", deps.users.UsersList)
	})

	rootRouter.Mount("/api/v1", apiRouter)

	return rootRouter
}

// readinessHandler reports 503 while the data source or the asset bucket cannot be reached.
func readinessHandler(deps *dependencies, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		if err := deps.source.Ping(ctx); err != nil {
			logger.Warn("readiness: data source unreachable", zap.Error(err))
			problem.Write(w, problem.New("Service unavailable", "data source unreachable", problem.TypeUnavailable, http.StatusServiceUnavailable, nil))
			return
		}

		if deps.assetsReady != nil {
			if err := deps.assetsReady(ctx); err != nil {
				logger.Warn("readiness: asset bucket unreachable", zap.Error(err))
				problem.Write(w, problem.New("Service unavailable", "asset storage unreachable", problem.TypeUnavailable, http.StatusServiceUnavailable, nil))
				return
			}
		}

		w.WriteHeader(http.StatusOK)
	}
}

// mustNewSpecValidator loads the OpenAPI document and builds validator middleware.
// Every route group reuses it so requests are checked against the same contract.
func mustNewSpecValidator(logger *zap.Logger, path string) func(http.Handler) http.Handler {
	spec := mustLoadSpec(logger, path)
	return platformmiddleware.SpecValidator(spec, logger)
}

// mustLoadSpec returns the embedded OpenAPI document registered for path.
func mustLoadSpec(logger *zap.Logger, path string) *openapi3.T {
	loaderFn, ok := swaggerLoaders[path]
	if !ok {
		logger.Fatal("unknown contract", zap.String("path", path))
	}

	spec, err := loaderFn()
	if err != nil {
		logger.Fatal("load embedded swagger", zap.String("path", path), zap.Error(err))
	}
	logSecuritySchemes(logger, path, spec)
	return spec
}

func logSecuritySchemes(logger *zap.Logger, path string, spec *openapi3.T) {
	if spec.Components.SecuritySchemes == nil {
		spec.Components.SecuritySchemes = openapi3.SecuritySchemes{}
	}

	if _, ok := spec.Components.SecuritySchemes["bearerAuth"]; !ok {
		spec.Components.SecuritySchemes["bearerAuth"] = &openapi3.SecuritySchemeRef{
			Value: &openapi3.SecurityScheme{
				Type:   "http",
				Scheme: "bearer",
			},
		}
		logger.Warn("injecting default bearerAuth security scheme", zap.String("path", path))
	}

	names := make([]string, 0, len(spec.Components.SecuritySchemes))
	for name := range spec.Components.SecuritySchemes {
		names = append(names, name)
	}
	logger.Debug("loaded security schemes", zap.String("path", path), zap.Strings("names", names))
}
