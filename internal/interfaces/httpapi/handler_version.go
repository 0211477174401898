package httpapi

import "net/http"

type versionResolveDTO struct {
	Hint     string `json:"hint,omitempty"`
	Resolved string `json:"resolved"`
}

func (h *Handler) ResolveVersion(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ResolveVersion")
	defer span.End()

	hint := r.URL.Query().Get("hint")
	resolved := h.versionService.Resolve(ctx, hint)

	writeSuccess(ctx, w, http.StatusOK, versionResolveDTO{
		Hint:     hint,
		Resolved: resolved,
	})
}
