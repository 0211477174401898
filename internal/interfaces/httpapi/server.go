package httpapi

import (
	"log/slog"
	"net/http"
)

func NewRouter(
	handler *Handler,
	logger *slog.Logger,
	corsAllowedOrigins []string,
	internalJobToken string,
) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler)
	registerPublicRoutes(mux, handler)
	registerInternalRoutes(mux, handler, internalJobToken)

	return RequestTracing(RequestLogging(logger, CORS(corsAllowedOrigins, recoverPanic(logger, mux))))
}

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/versions/resolve", handler.ResolveVersion)
	mux.HandleFunc("GET /v1/teams/{teamID}/roster", handler.GetTeamRoster)
	mux.HandleFunc("GET /v1/teams/{teamID}/stats", handler.GetTeamStats)
	mux.HandleFunc("GET /v1/players/{playerID}/stats", handler.GetPlayerStats)
	mux.HandleFunc("GET /v1/players/{playerID}/transfers", handler.ListPlayerTransfers)
	mux.HandleFunc("GET /v1/matches/{matchID}", handler.GetMatch)
	mux.HandleFunc("GET /v1/tournaments/{tournamentID}/series", handler.ListTournamentSeries)
}

func registerInternalRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/import-batch",
		RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunImportBatchJob)))
	mux.Handle("POST /v1/transfers",
		RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RecordTransfer)))
}

func recoverPanic(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.recoverPanic")
		defer span.End()

		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(ctx, "panic recovered", "panic", rec)
				writeInternalError(ctx, w)
			}
		}()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
