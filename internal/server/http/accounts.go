package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/and161185/goph-notes/internal/convert"
	"github.com/and161185/goph-notes/internal/errs"
)

type createAccountRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) createAccount(c *gin.Context) {
	var req createAccountRequest
	if !bindJSON(c, &req) {
		return
	}
	reg, err := h.accounts.Register(c.Request.Context(), req.FullName, req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"error":       false,
		"user":        convert.ToUser(reg.Profile),
		"accessToken": reg.Tokens.AccessToken,
		"message":     "Registration Successful",
	})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	tok, prof, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, errs.ErrNotFound) {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": "User not found"})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"error":       false,
		"message":     "Login Successful",
		"email":       prof.Email,
		"accessToken": tok.AccessToken,
	})
}

func (h *Handler) getUser(c *gin.Context) {
	id, _ := OwnerIDFromCtx(c.Request.Context())
	prof, err := h.accounts.Profile(c.Request.Context(), id)
	if errors.Is(err, errs.ErrNotFound) {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": convert.ToUser(prof), "message": ""})
}
