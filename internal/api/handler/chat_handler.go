package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/skinscan/api/internal/api/metrics"
	"github.com/skinscan/api/internal/core/domain"
	"github.com/skinscan/api/internal/core/ports"
)

// ChatHandler proxies prompts to the generative-text service.
type ChatHandler struct {
	chatService ports.ChatService
	log         zerolog.Logger
}

func NewChatHandler(chatService ports.ChatService, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{chatService: chatService, log: log}
}

// Ask handles POST /chatbot.
//
// @Summary      Ask the assistant
// @Tags         chatbot
// @Accept       json
// @Produce      json
// @Param        body  body      chatRequest  true  "Prompt"
// @Success      200   {object}  chatResponse
// @Failure      400   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /chatbot [post]
func (h *ChatHandler) Ask(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: msgPromptRequired})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: msgPromptRequired})
	}

	start := time.Now()
	reply, err := h.chatService.Ask(c.Request().Context(), req.Query)
	if err == nil || errors.Is(err, domain.ErrUpstream) {
		metrics.ObserveUpstream(metrics.ServiceGemini, start, err)
	}
	if err != nil {
		if statusFor(err) == http.StatusBadRequest {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: msgPromptRequired})
		}
		h.log.Error().Err(err).Msg("chatbot request failed")
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: msgChatbotError})
	}

	return c.JSON(http.StatusOK, chatResponse{Response: reply})
}
