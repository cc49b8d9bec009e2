package settings

import (
	"net/http"
	"slotkeeper/infras/otel"
	"slotkeeper/internal/domains/settings/model/dto"
	"slotkeeper/internal/domains/settings/service"
	"slotkeeper/shared/constant"
	"slotkeeper/shared/validator"
	"slotkeeper/transport/http/response"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Settings
	otel    otel.Otel
}

func New(service service.Settings, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/resources/{resourceID}/settings", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetSettings)
		routerGroup.Put("/", handler.UpdateSettings)
	})
}

// GetSettings returns the stored business hours of a resource.
// @Summary Get resource settings
// @Tags Settings
// @Produce json
// @Param resourceID path string true "Resource ID"
// @Success 200 {object} response.Data[dto.SettingsResponse]
// @Failure 404 {object} response.Error
// @Router /v1/resources/{resourceID}/settings [get]
// @Security BearerAuth
func (handler *Handler) GetSettings(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetSettings")
	defer scope.End()

	resourceID := chi.URLParam(request, constant.RequestParamResourceID)

	settings, err := handler.service.Get(ctx, resourceID)
	if err != nil {
		scope.TraceError(err)
		log.Debug().Err(err).Str("resourceID", resourceID).Msg("failed to get settings")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, settings)
}

// UpdateSettings normalizes and stores business hours, breaks and days off.
// Dropped ranges come back as warnings rather than errors.
// @Summary Update resource settings
// @Tags Settings
// @Accept json
// @Produce json
// @Param resourceID path string true "Resource ID"
// @Param request body dto.UpdateSettingsRequest true "Settings document"
// @Success 200 {object} response.Data[dto.SettingsResponse]
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Router /v1/resources/{resourceID}/settings [put]
// @Security BearerAuth
func (handler *Handler) UpdateSettings(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateSettings")
	defer scope.End()

	resourceID := chi.URLParam(request, constant.RequestParamResourceID)

	req := dto.UpdateSettingsRequest{}
	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Debug().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	settings, err := handler.service.Update(ctx, resourceID, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("resourceID", resourceID).Msg("failed to update settings")

		response.WithError(writer, err)

		return
	}

	if len(settings.Warnings) > 0 {
		scope.AddEvent("Settings saved with warnings")
	}

	response.WithJSON(writer, http.StatusOK, settings)
}
