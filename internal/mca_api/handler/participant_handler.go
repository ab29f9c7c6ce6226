package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/mca-deal-ledger/internal/mca_api/service"
)

// ParticipantHandler handles HTTP requests for the participant registry
type ParticipantHandler struct {
	participantService service.ParticipantService
	logger             *slog.Logger
}

// NewParticipantHandler creates a new participant handler
func NewParticipantHandler(logger *slog.Logger, participantService service.ParticipantService) *ParticipantHandler {
	return &ParticipantHandler{
		participantService: participantService,
		logger:             logger,
	}
}

// Create registers a participant. Registering an existing name returns it unchanged.
func (h *ParticipantHandler) Create(c *gin.Context) {
	var req CreateParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	name, err := h.participantService.Register(c.Request.Context(), req.Name)
	if err != nil {
		RespondServiceError(c, h.logger, "Failed to register participant", err)
		return
	}

	RespondCreated(c, ParticipantResponse{Name: name})
}

// List returns every participant in registration order
func (h *ParticipantHandler) List(c *gin.Context) {
	names, err := h.participantService.List(c.Request.Context())
	if err != nil {
		RespondServiceError(c, h.logger, "Failed to list participants", err)
		return
	}

	if names == nil {
		names = []string{}
	}
	RespondOK(c, ParticipantListResponse{Participants: names})
}
