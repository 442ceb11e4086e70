package audit

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sekolah-sis/sekolah-sis/internal/platform/httpx"
	"github.com/sekolah-sis/sekolah-sis/internal/shared"
)

// Handler exposes the admin-only audit listing endpoint.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers audit routes. Role gating happens at the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
}

type listResponse struct {
	Data       []Entry           `json:"data"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filters := Filters{
		Method: query.Get("method"),
		Path:   query.Get("path"),
	}
	if raw := query.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			httpx.RespondError(w, httpx.ErrValidation)
			return
		}
		filters.Page = page
	}
	if raw := query.Get("pageSize"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 || size > 100 {
			httpx.RespondError(w, httpx.ErrValidation)
			return
		}
		filters.PageSize = size
	}
	if raw := query.Get("userId"); raw != "" {
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.RespondError(w, httpx.ErrValidation)
			return
		}
		filters.UserID = &userID
	}

	result, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list audit logs", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse{
		Data:       result.Entries,
		Pagination: shared.NewPagination(result.Page, result.PageSize, result.Total),
	})
}
