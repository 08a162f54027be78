package http

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"quiz-attempt-service/internal/app"
	"quiz-attempt-service/internal/attempt"
	"quiz-attempt-service/internal/auth"
	"quiz-attempt-service/internal/domain"
)

// AttemptHandler exposes the attempt use cases as a JSON API.
type AttemptHandler struct {
	service *app.AttemptService
}

func NewAttemptHandler(service *app.AttemptService) *AttemptHandler {
	return &AttemptHandler{service: service}
}

// Register mounts the API routes on r.
func (h *AttemptHandler) Register(r gin.IRouter) {
	quizzes := r.Group("/quizzes/:quizId")
	quizzes.GET("", h.getQuiz)
	quizzes.POST("/attempts", h.startAttempt)
	quizzes.GET("/submission", h.getSubmission)

	attempts := r.Group("/attempts/:attemptId")
	attempts.GET("", h.getAttempt)
	attempts.DELETE("", h.abandonAttempt)
	attempts.POST("/selection", h.selectOption)
	attempts.POST("/advance", h.advance)
	attempts.POST("/submission", h.retrySubmission)
}

// startRequest leaves questionCount out to ask for every matching question.
type startRequest struct {
	QuestionCount *int   `json:"questionCount"`
	Difficulty    string `json:"difficulty"`
}

type selectRequest struct {
	OptionID string `json:"optionId" binding:"required"`
}

type attemptResponse struct {
	Attempt    attempt.View    `json:"attempt"`
	Completion *app.Completion `json:"completion,omitempty"`
}

func principal(c *gin.Context) domain.Principal {
	p, _ := auth.PrincipalFrom(c.Request.Context())
	return p
}

func (h *AttemptHandler) getQuiz(c *gin.Context) {
	view, err := h.service.Quiz(c.Request.Context(), c.Param("quizId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *AttemptHandler) startAttempt(c *gin.Context) {
	var req startRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	setup := attempt.Setup{QuestionCount: math.MaxInt, Difficulty: domain.ParseDifficulty(req.Difficulty)}
	if req.QuestionCount != nil {
		setup.QuestionCount = *req.QuestionCount
	}

	session, err := h.service.Start(c.Request.Context(), principal(c), c.Param("quizId"), setup)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, attemptResponse{Attempt: session.View()})
}

func (h *AttemptHandler) getSubmission(c *gin.Context) {
	submission, err := h.service.Submission(c.Request.Context(), principal(c), c.Param("quizId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, submission)
}

func (h *AttemptHandler) getAttempt(c *gin.Context) {
	session, err := h.service.Attempt(c.Request.Context(), principal(c), c.Param("attemptId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, attemptResponse{Attempt: session.View()})
}

func (h *AttemptHandler) abandonAttempt(c *gin.Context) {
	if err := h.service.Abandon(c.Request.Context(), principal(c), c.Param("attemptId")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AttemptHandler) selectOption(c *gin.Context) {
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "optionId is required"})
		return
	}

	session, err := h.service.Select(c.Request.Context(), principal(c), c.Param("attemptId"), req.OptionID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, attemptResponse{Attempt: session.View()})
}

func (h *AttemptHandler) advance(c *gin.Context) {
	result, err := h.service.Advance(c.Request.Context(), principal(c), c.Param("attemptId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, attemptResponse{Attempt: result.Session.View(), Completion: result.Completion})
}

func (h *AttemptHandler) retrySubmission(c *gin.Context) {
	completion, err := h.service.Retry(c.Request.Context(), principal(c), c.Param("attemptId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, completion)
}
