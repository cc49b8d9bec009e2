package booking

import (
	"net/http"
	"slotkeeper/infras/otel"
	"slotkeeper/internal/domains/booking/model/dto"
	"slotkeeper/internal/domains/booking/service"
	"slotkeeper/shared/constant"
	gDto "slotkeeper/shared/dto"
	"slotkeeper/shared/failure"
	"slotkeeper/shared/validator"
	"slotkeeper/transport/http/response"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

const (
	queryResourceID = "resource_id"
	queryStatus     = "status"
	queryFrom       = "from"
	queryTo         = "to"
)

type Handler struct {
	service service.Booking
	otel    otel.Otel
}

func New(service service.Booking, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/bookings", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateBooking)
		routerGroup.Get("/", handler.GetBookings)
		routerGroup.Get("/{id}", handler.GetBookingByID)
		routerGroup.Post("/{id}/confirm", handler.ConfirmBooking)
		routerGroup.Post("/{id}/cancel", handler.CancelBooking)
		routerGroup.Post("/{id}/reschedule", handler.RescheduleBooking)
		routerGroup.Post("/{id}/resolve", handler.ResolveConflict)
		routerGroup.Get("/{id}/refund-quote", handler.GetRefundQuote)
		routerGroup.Patch("/{id}/price", handler.OverridePrice)
	})
}

// bind decodes and validates an optional JSON body; an empty body validates
// the zero value.
func bind[T any](r *http.Request, req *T) error {
	if r.Body == nil || r.Body == http.NoBody || r.ContentLength == 0 {
		return validator.ValidateStruct(req)
	}

	return validator.Validate(r.Body, req)
}

func fail(writer http.ResponseWriter, scope otel.Scope, err error, msg string) {
	scope.TraceError(err)

	if failure.GetCode(err) >= http.StatusInternalServerError && !failure.IsRetryable(err) {
		log.Error().Err(err).Msg(msg)
	} else {
		log.Debug().Err(err).Msg(msg)
	}

	response.WithError(writer, err)
}

// CreateBooking places a hold on an interval of a resource.
// @Summary Create a booking hold
// @Description Reserve an interval on a resource. The booking starts in pending_hold.
// @Description The catalog price applies unless the caller owns the resource.
// @Tags Booking
// @Accept json
// @Produce json
// @Param request body dto.CreateBookingRequest true "Create Booking Request"
// @Success 201 {object} response.Data[dto.BookingResponse]
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error "Interval already booked"
// @Failure 503 {object} response.Error "Resource busy, retry"
// @Router /v1/bookings [post]
// @Security BearerAuth
func (handler *Handler) CreateBooking(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateBooking")
	defer scope.End()

	req := dto.CreateBookingRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		fail(writer, scope, err, "failed to validate request body")

		return
	}

	booking, err := handler.service.Create(ctx, req)
	if err != nil {
		fail(writer, scope, err, "failed to create booking")

		return
	}

	scope.AddEvent("Booking hold created " + booking.ID)

	response.WithJSON(writer, http.StatusCreated, booking)
}

// GetBookings lists bookings the caller owns or books.
// @Summary List bookings
// @Tags Booking
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param resource_id query string false "Filter by resource"
// @Param status query string false "Comma separated statuses"
// @Param from query string false "Bookings ending after (RFC3339)"
// @Param to query string false "Bookings starting before (RFC3339)"
// @Success 200 {object} response.Data[dto.GetBookingsResponse]
// @Failure 400 {object} response.Error
// @Router /v1/bookings [get]
// @Security BearerAuth
func (handler *Handler) GetBookings(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookings")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(request, true)

	query := request.URL.Query()
	req := dto.ListBookingsRequest{
		ResourceID: query.Get(queryResourceID),
		From:       query.Get(queryFrom),
		To:         query.Get(queryTo),
	}

	for _, raw := range query[queryStatus] {
		for _, status := range strings.Split(raw, ",") {
			if status = strings.TrimSpace(status); status != constant.Empty {
				req.Statuses = append(req.Statuses, status)
			}
		}
	}

	if err := validator.ValidateStruct(&req); err != nil {
		fail(writer, scope, err, "failed to validate query")

		return
	}

	bookings, err := handler.service.List(ctx, queryParams, req)
	if err != nil {
		fail(writer, scope, err, "failed to get bookings")

		return
	}

	response.WithJSON(writer, http.StatusOK, bookings)
}

// GetBookingByID retrieves a booking by its ID.
// @Summary Get a booking by ID
// @Tags Booking
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Data[dto.BookingResponse]
// @Failure 404 {object} response.Error
// @Router /v1/bookings/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetBookingByID(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookingByID")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	booking, err := handler.service.Get(ctx, id)
	if err != nil {
		fail(writer, scope, err, "failed to get booking by ID")

		return
	}

	response.WithJSON(writer, http.StatusOK, booking)
}

// ConfirmBooking confirms a hold once payment completed. Repeating it is safe.
// @Summary Confirm a booking
// @Description Called by the payment system once the transaction completed. Requires the API key.
// @Tags Booking
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body dto.ConfirmBookingRequest false "Transaction reference"
// @Success 200 {object} response.Data[dto.ConfirmBookingResponse] "Outcome confirmed, already_confirmed or conflict"
// @Failure 403 {object} response.Error "Caller is not the payment system"
// @Failure 409 {object} response.Error "Invalid state"
// @Failure 410 {object} response.Error "Hold expired"
// @Failure 503 {object} response.Error "Resource busy, retry"
// @Router /v1/bookings/{id}/confirm [post]
// @Security ApiKeyAuth
func (handler *Handler) ConfirmBooking(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ConfirmBooking")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	req := dto.ConfirmBookingRequest{}
	if err := bind(request, &req); err != nil {
		fail(writer, scope, err, "failed to validate request body")

		return
	}

	res, err := handler.service.Confirm(ctx, id, req)
	if err != nil {
		fail(writer, scope, err, "failed to confirm booking")

		return
	}

	scope.AddEvent("Booking confirm outcome " + string(res.Outcome))

	response.WithJSON(writer, http.StatusOK, res)
}

// CancelBooking cancels a booking, optionally as a refund.
// @Summary Cancel or refund a booking
// @Tags Booking
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body dto.CancelBookingRequest true "Target status and reason"
// @Success 200 {object} response.Data[dto.BookingResponse]
// @Failure 409 {object} response.Error "Invalid state"
// @Failure 410 {object} response.Error "Hold expired"
// @Failure 422 {object} response.Error "Refund window closed"
// @Router /v1/bookings/{id}/cancel [post]
// @Security BearerAuth
func (handler *Handler) CancelBooking(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CancelBooking")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	req := dto.CancelBookingRequest{}
	if err := validator.Validate(request.Body, &req); err != nil {
		fail(writer, scope, err, "failed to validate request body")

		return
	}

	booking, err := handler.service.Cancel(ctx, id, req)
	if err != nil {
		fail(writer, scope, err, "failed to cancel booking")

		return
	}

	response.WithJSON(writer, http.StatusOK, booking)
}

// RescheduleBooking moves a booking to another interval on the same resource.
// @Summary Reschedule a booking
// @Tags Booking
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body dto.RescheduleBookingRequest true "New interval"
// @Success 200 {object} response.Data[dto.BookingResponse]
// @Failure 409 {object} response.Error "Interval taken or invalid state"
// @Router /v1/bookings/{id}/reschedule [post]
// @Security BearerAuth
func (handler *Handler) RescheduleBooking(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".RescheduleBooking")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	req := dto.RescheduleBookingRequest{}
	if err := validator.Validate(request.Body, &req); err != nil {
		fail(writer, scope, err, "failed to validate request body")

		return
	}

	booking, err := handler.service.Reschedule(ctx, id, req)
	if err != nil {
		fail(writer, scope, err, "failed to reschedule booking")

		return
	}

	response.WithJSON(writer, http.StatusOK, booking)
}

// ResolveConflict closes a conflicting booking. Resource owner only.
// @Summary Resolve a booking conflict
// @Tags Booking
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body dto.ResolveConflictRequest true "Target status and reason"
// @Success 200 {object} response.Data[dto.BookingResponse]
// @Failure 403 {object} response.Error
// @Failure 409 {object} response.Error "Booking is not in conflict"
// @Router /v1/bookings/{id}/resolve [post]
// @Security BearerAuth
func (handler *Handler) ResolveConflict(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ResolveConflict")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	req := dto.ResolveConflictRequest{}
	if err := validator.Validate(request.Body, &req); err != nil {
		fail(writer, scope, err, "failed to validate request body")

		return
	}

	booking, err := handler.service.ResolveConflict(ctx, id, req)
	if err != nil {
		fail(writer, scope, err, "failed to resolve booking conflict")

		return
	}

	response.WithJSON(writer, http.StatusOK, booking)
}

// GetRefundQuote reports what a refund would pay out right now.
// @Summary Quote a refund
// @Tags Booking
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Data[dto.RefundQuoteResponse]
// @Failure 404 {object} response.Error
// @Router /v1/bookings/{id}/refund-quote [get]
// @Security BearerAuth
func (handler *Handler) GetRefundQuote(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetRefundQuote")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	quote, err := handler.service.RefundQuote(ctx, id)
	if err != nil {
		fail(writer, scope, err, "failed to quote refund")

		return
	}

	response.WithJSON(writer, http.StatusOK, quote)
}

// OverridePrice replaces the price fixed at creation. Resource owner only.
// @Summary Override a booking price
// @Tags Booking
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body dto.OverridePriceRequest true "New price"
// @Success 200 {object} response.Data[dto.BookingResponse]
// @Failure 403 {object} response.Error
// @Router /v1/bookings/{id}/price [patch]
// @Security BearerAuth
func (handler *Handler) OverridePrice(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".OverridePrice")
	defer scope.End()

	id := chi.URLParam(request, constant.RequestParamID)

	req := dto.OverridePriceRequest{}
	if err := validator.Validate(request.Body, &req); err != nil {
		fail(writer, scope, err, "failed to validate request body")

		return
	}

	booking, err := handler.service.OverridePrice(ctx, id, req)
	if err != nil {
		fail(writer, scope, err, "failed to override booking price")

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Booking price overridden by user " + user)

	response.WithJSON(writer, http.StatusOK, booking)
}
