// Package httpserver exposes the account and note services as a JSON API on gin.
package httpserver

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/and161185/goph-notes/internal/errs"
	"github.com/and161185/goph-notes/internal/service"
)

var internalError = gin.H{"error": true, "message": "Internal Server Error"}

// Handler serves the HTTP API.
type Handler struct {
	accounts service.AccountService
	notes    service.NoteService
	auth     TokenVerifier
	log      *zap.Logger
}

// NewHandler constructs Handler with required dependencies.
func NewHandler(accounts service.AccountService, notes service.NoteService, auth TokenVerifier, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{accounts: accounts, notes: notes, auth: auth, log: log}
}

// RegisterRoutes mounts public and authenticated routes on r.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/", h.hello)
	r.POST("/create-account", h.createAccount)
	r.POST("/login", h.login)

	authed := r.Group("/")
	authed.Use(RequireAuth(h.auth))
	authed.GET("/get-user", h.getUser)
	authed.POST("/add-note", h.addNote)
	authed.PUT("/edit-note/:id", h.editNote)
	authed.GET("/get-all-notes", h.getAllNotes)
	authed.DELETE("/delete-note/:id", h.deleteNote)
	authed.PUT("/update-note-pinned/:id", h.updateNotePinned)
	authed.GET("/search-notes", h.searchNotes)
}

// NewRouter builds the engine with recovery, access log and CORS middleware.
func NewRouter(h *Handler, corsOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(Recover(h.log), AccessLog(h.log), CORS(corsOrigins))
	h.RegisterRoutes(r)
	return r
}

func (h *Handler) hello(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": "hello"})
}

// bindJSON decodes the body into dst; an empty body leaves dst zero.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": "Invalid request body"})
		return false
	}
	return true
}

// fail maps service errors to responses. Store details are logged, never returned.
func (h *Handler) fail(c *gin.Context, err error) {
	var ve *errs.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": ve.Message})
	case errors.Is(err, errs.ErrUnauthorized):
		c.AbortWithStatus(http.StatusUnauthorized)
	case errors.Is(err, errs.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": true, "message": "Note not found"})
	case errors.Is(err, errs.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": true, "message": "That email is already in use"})
	case errors.Is(err, errs.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": "Invalid Credentials"})
	default:
		h.log.Error("request failed", zap.String("route", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, internalError)
	}
}
