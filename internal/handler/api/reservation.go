package api

import (
	"net/http"
	"strconv"

	"reservations-api/internal/domain/authz"
	"reservations-api/internal/domain/listing"
	reqdto "reservations-api/internal/handler/dto/request"
	resdto "reservations-api/internal/handler/dto/response"
	"reservations-api/internal/handler/httperr"
	"reservations-api/internal/pkg/config"
	"reservations-api/internal/pkg/errs"
	"reservations-api/internal/usecase/commands"
	"reservations-api/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgCreated      = "Reserva creada exitosamente"
	msgUpdated      = "Reserva actualizada exitosamente"
	msgStateChanged = "Estado de reserva actualizado exitosamente"
	msgEmptyList    = "No se encontraron reservas."

	idempotencyKeyHeader = "Idempotency-Key"
)

var errInvalidReservationID = errs.Mark(errs.New("invalid reservation id"), errs.ErrNotFound)

type ReservationHandler struct {
	commands commands.ReservationCommands
	queries  queries.ReservationQueries
	cfg      config.AppConfig
}

func NewReservationHandler(
	reservationCommands commands.ReservationCommands,
	reservationQueries queries.ReservationQueries,
	cfg config.Config,
) *ReservationHandler {
	RegisterValidatorTagNames()
	return &ReservationHandler{
		commands: reservationCommands,
		queries:  reservationQueries,
		cfg:      cfg.App,
	}
}

func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var req reqdto.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	input := req.ToInput()
	if raw := c.GetHeader(idempotencyKeyHeader); raw != "" {
		key, err := uuid.Parse(raw)
		if err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, errs.Mark(err, errs.ErrInvalidInput),
				idempotencyKeyHeader+" must be a UUID", nil)
			return
		}
		input.IdempotencyKey = &key
	}

	view, err := h.commands.Create(c.Request.Context(), actor, input)
	if err != nil {
		h.respondError(c, err, req)
		return
	}

	c.JSON(http.StatusCreated, resdto.Envelope{
		Message: msgCreated,
		Data:    resdto.FromReservationView(view, h.cfg.BaseURL),
	})
}

func (h *ReservationHandler) ListReservations(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	params := listing.Params{
		Filters: c.QueryMap("filter"),
		Page:    c.Query("page"),
		Size:    c.Query("size"),
		Sort:    c.Query("sort"),
	}
	page, err := h.queries.List(c.Request.Context(), actor, params)
	if err != nil {
		h.respondError(c, err, params)
		return
	}

	body := resdto.FromReservationPage(page, h.cfg.BaseURL)
	if len(body.Data) == 0 {
		body.Message = msgEmptyList
	}
	c.JSON(http.StatusOK, body)
}

func (h *ReservationHandler) NearbyReservations(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var query reqdto.NearbyQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.queries.Nearby(c.Request.Context(), actor, query.ToParams())
	if err != nil {
		h.respondError(c, err, query)
		return
	}

	c.JSON(http.StatusOK, resdto.Envelope{Data: resdto.FromNearbyResult(result, h.cfg.BaseURL)})
}

func (h *ReservationHandler) ReservationStats(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	stats, err := h.queries.Stats(c.Request.Context(), actor)
	if err != nil {
		h.respondError(c, err, nil)
		return
	}

	c.JSON(http.StatusOK, resdto.Envelope{Data: stats})
}

func (h *ReservationHandler) GetReservation(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := reservationID(c)
	if !ok {
		return
	}

	view, err := h.queries.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		h.respondError(c, err, nil)
		return
	}

	c.JSON(http.StatusOK, resdto.Envelope{Data: resdto.FromReservationView(view, h.cfg.BaseURL)})
}

func (h *ReservationHandler) UpdateReservation(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := reservationID(c)
	if !ok {
		return
	}

	var req reqdto.UpdateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	view, err := h.commands.UpdateFields(c.Request.Context(), actor, id, req.ToInput())
	if err != nil {
		h.respondError(c, err, req)
		return
	}

	c.JSON(http.StatusOK, resdto.Envelope{
		Message: msgUpdated,
		Data:    resdto.FromReservationView(view, h.cfg.BaseURL),
	})
}

// ChangeState reports lifecycle denies (final state, edge not in the graph)
// as 422 and role denies as 403.
func (h *ReservationHandler) ChangeState(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := reservationID(c)
	if !ok {
		return
	}

	var req reqdto.ChangeStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.commands.ChangeState(c.Request.Context(), actor, id, req.State)
	if err != nil {
		var denied *authz.DeniedError
		if errs.As(err, &denied) && isLifecycleDeny(denied.Decision.Code) {
			httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, denied.Error(),
				map[string]string{"code": string(denied.Decision.Code)})
			return
		}
		h.respondError(c, err, req)
		return
	}

	c.JSON(http.StatusOK, resdto.Envelope{
		Message: msgStateChanged,
		Data:    resdto.FromChangeStateResult(result, h.cfg.BaseURL),
	})
}

func isLifecycleDeny(code authz.DenyCode) bool {
	return code == authz.DenyFinalState || code == authz.DenyInvalidTransition
}

// reservationID treats a malformed id like an unknown one.
func reservationID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		httperr.AbortWithError(c, http.StatusNotFound, errInvalidReservationID, "Reservation not found", nil)
		return 0, false
	}
	return id, true
}
