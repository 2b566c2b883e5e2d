package controllers

import (
	"log/slog"
	"net/http"

	"eventparticipation/internal/delivery/http/helpers"
	"eventparticipation/internal/domain"
)

// UpdateRequestsStatusRequest is the request body for PATCH /users/{userId}/events/{eventId}/requests.
type UpdateRequestsStatusRequest struct {
	RequestIDs []int64 `json:"requestIds"`
	Status     string  `json:"status"`
}

// Validate implements Validator.
func (u UpdateRequestsStatusRequest) Validate() []string {
	var errs []string
	if len(u.RequestIDs) == 0 {
		errs = append(errs, "requestIds is required")
	}
	if u.Status == "" {
		errs = append(errs, "status is required")
	} else if st, err := domain.ParseRequestStatus(u.Status); err != nil || (st != domain.StatusConfirmed && st != domain.StatusRejected) {
		errs = append(errs, "status must be CONFIRMED or REJECTED")
	}
	return errs
}

// RequestSuccessResponse is the success envelope for a single participation request.
type RequestSuccessResponse struct {
	Data  domain.ParticipationRequest `json:"data"`
	Error *helpers.APIError           `json:"error"`
}

// RequestListSuccessResponse is the success envelope for a list of participation requests.
type RequestListSuccessResponse struct {
	Data  []domain.ParticipationRequest `json:"data"`
	Error *helpers.APIError             `json:"error"`
}

// DecisionSuccessResponse is the success envelope for PATCH /users/{userId}/events/{eventId}/requests.
type DecisionSuccessResponse struct {
	Data  domain.DecisionResult `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// ConfirmedCountsSuccessResponse is the success envelope for POST /internal/requests/events/confirmed.
// Keys are event ids.
type ConfirmedCountsSuccessResponse struct {
	Data  map[string]int    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type RequestController struct {
	Logger  *slog.Logger
	Service domain.AdmissionService
}

func NewRequestController(logger *slog.Logger, svc domain.AdmissionService) *RequestController {
	return &RequestController{
		Logger:  logger,
		Service: svc,
	}
}

// SubmitRequest godoc
// @Summary Ask to join an event
// @Description Creates a participation request. It is CONFIRMED at once when the event has no moderation or no limit, otherwise PENDING.
// @Tags requests
// @Produce json
// @Param userId path int true "Requester id"
// @Param eventId query int true "Event id"
// @Success 201 {object} controllers.RequestSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (duplicate, self-request, not published, limit reached)"
// @Failure 503 {object} helpers.APIResponse "error.code: service_unavailable"
// @Router /users/{userId}/requests [post]
func (c *RequestController) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := helpers.PathID(w, r, "userId")
	if !ok {
		return
	}
	eventID, ok := helpers.QueryID(w, r, "eventId")
	if !ok {
		return
	}
	req, err := c.Service.SubmitRequest(r.Context(), userID, eventID)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, req)
}

// ListUserRequests godoc
// @Summary List a user's participation requests
// @Tags requests
// @Produce json
// @Param userId path int true "Requester id"
// @Success 200 {object} controllers.RequestListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /users/{userId}/requests [get]
func (c *RequestController) ListUserRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := helpers.PathID(w, r, "userId")
	if !ok {
		return
	}
	reqs, err := c.Service.ListRequestsByRequester(r.Context(), userID)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, reqs)
}

// CancelRequest godoc
// @Summary Cancel own participation request
// @Description Cancels the request and frees its seat if it was confirmed. Canceling twice succeeds.
// @Tags requests
// @Produce json
// @Param userId path int true "Requester id"
// @Param requestId path int true "Request id"
// @Success 200 {object} controllers.RequestSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 503 {object} helpers.APIResponse "error.code: service_unavailable"
// @Router /users/{userId}/requests/{requestId}/cancel [patch]
func (c *RequestController) CancelRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := helpers.PathID(w, r, "userId")
	if !ok {
		return
	}
	requestID, ok := helpers.PathID(w, r, "requestId")
	if !ok {
		return
	}
	req, err := c.Service.CancelRequest(r.Context(), userID, requestID)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, req)
}

// ListEventRequests godoc
// @Summary List requests to join an event
// @Description Organizer view of every request for the event.
// @Tags organizer
// @Produce json
// @Param userId path int true "Organizer id"
// @Param eventId path int true "Event id"
// @Success 200 {object} controllers.RequestListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /users/{userId}/events/{eventId}/requests [get]
func (c *RequestController) ListEventRequests(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := helpers.PathID(w, r, "userId")
	if !ok {
		return
	}
	eventID, ok := helpers.PathID(w, r, "eventId")
	if !ok {
		return
	}
	reqs, err := c.Service.ListRequestsByEvent(r.Context(), ownerID, eventID)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, reqs)
}

// UpdateRequestsStatus godoc
// @Summary Confirm or reject pending requests
// @Description All listed requests must be PENDING. When confirming, seats are handed out in the order of requestIds and the rest are rejected. Nothing changes on error.
// @Tags organizer
// @Accept json
// @Produce json
// @Param userId path int true "Organizer id"
// @Param eventId path int true "Event id"
// @Param body body UpdateRequestsStatusRequest true "Requests and target status"
// @Success 200 {object} controllers.DecisionSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (not all pending, limit reached)"
// @Failure 503 {object} helpers.APIResponse "error.code: service_unavailable"
// @Router /users/{userId}/events/{eventId}/requests [patch]
func (c *RequestController) UpdateRequestsStatus(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := helpers.PathID(w, r, "userId")
	if !ok {
		return
	}
	eventID, ok := helpers.PathID(w, r, "eventId")
	if !ok {
		return
	}
	var body UpdateRequestsStatusRequest
	if !helpers.DecodeAndValidate(w, r, &body) {
		return
	}
	target, _ := domain.ParseRequestStatus(body.Status)
	result, err := c.Service.UpdateRequestsStatus(r.Context(), ownerID, eventID, body.RequestIDs, target)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// ConfirmedCounts godoc
// @Summary Confirmed seat counts
// @Description Internal endpoint for other services. Returns the number of confirmed requests per event id, zero included.
// @Tags internal
// @Accept json
// @Produce json
// @Param body body []int true "Event ids"
// @Success 200 {object} controllers.ConfirmedCountsSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /internal/requests/events/confirmed [post]
func (c *RequestController) ConfirmedCounts(w http.ResponseWriter, r *http.Request) {
	var eventIDs []int64
	if !helpers.DecodeAndValidate(w, r, &eventIDs) {
		return
	}
	counts, err := c.Service.ConfirmedCounts(r.Context(), eventIDs)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, counts)
}
