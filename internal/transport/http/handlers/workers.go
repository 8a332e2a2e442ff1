package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sophia-kim26/koreanschool-attendance/internal/usecase"
)

// WorkerHandler exposes account lifecycle endpoints.
type WorkerHandler struct {
	credentials *usecase.CredentialService
}

// NewWorkerHandler constructs WorkerHandler.
func NewWorkerHandler(credentials *usecase.CredentialService) *WorkerHandler {
	return &WorkerHandler{credentials: credentials}
}

// Create registers a worker account and returns the generated PIN. The same
// handler serves the rate-limited public route and the unrestricted admin
// route; only the middleware chain differs.
func (h *WorkerHandler) Create(c *gin.Context) {
	var req CreateWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "first_name, last_name, email, and session_day are required"))
		return
	}
	if !validEmail(req.Email) {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "email must look like local@domain.tld"))
		return
	}
	sessionDay, ok := parseSessionDay(req.SessionDay)
	if !ok {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "session_day must be friday, saturday, or sunday"))
		return
	}

	worker, pin, err := h.credentials.CreateAccount(c.Request.Context(), usecase.CreateAccountInput{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		KoreanName: req.KoreanName,
		Email:      req.Email,
		SessionDay: sessionDay,
		Classroom:  req.Classroom,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrDuplicateAccount, Status: http.StatusConflict, Message: "an account with this email already exists"},
		}, http.StatusInternalServerError, "account creation failed")
		return
	}

	c.JSON(http.StatusCreated, CreateWorkerResponse{
		Worker: newWorkerSummary(worker),
		PIN:    pin,
	})
}

// ResetPIN replaces the worker's PIN and returns the new plaintext once.
func (h *WorkerHandler) ResetPIN(c *gin.Context) {
	workerID, ok := parseID(c, "id")
	if !ok {
		return
	}

	pin, err := h.credentials.ResetCredential(c.Request.Context(), workerID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrWorkerNotFound, Status: http.StatusNotFound, Message: "worker not found"},
		}, http.StatusInternalServerError, "pin reset failed")
		return
	}

	c.JSON(http.StatusOK, ResetPINResponse{PIN: pin})
}

// Deactivate soft-deletes the worker account.
func (h *WorkerHandler) Deactivate(c *gin.Context) {
	workerID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.credentials.Deactivate(c.Request.Context(), workerID); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrWorkerNotFound, Status: http.StatusNotFound, Message: "worker not found"},
		}, http.StatusInternalServerError, "deactivation failed")
		return
	}

	c.Status(http.StatusNoContent)
}

// List returns all workers, active and inactive.
func (h *WorkerHandler) List(c *gin.Context) {
	workers, err := h.credentials.ListWorkers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "listing workers failed"))
		return
	}

	summaries := make([]WorkerSummary, 0, len(workers))
	for _, worker := range workers {
		summaries = append(summaries, newWorkerSummary(worker))
	}

	c.JSON(http.StatusOK, summaries)
}
