package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"

	"github.com/and161185/goph-notes/internal/convert"
	"github.com/and161185/goph-notes/internal/errs"
	"github.com/and161185/goph-notes/internal/model"
)

type addNoteRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

type pinRequest struct {
	IsPinned model.Optional[bool] `json:"isPinned"`
}

func owner(c *gin.Context) uuid.UUID {
	id, _ := OwnerIDFromCtx(c.Request.Context())
	return id
}

// noteKey pairs the path id with the caller. An unparsable id addresses nothing.
func noteKey(c *gin.Context) model.NoteKey {
	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		id = uuid.Nil
	}
	return model.NoteKey{OwnerID: owner(c), ID: id}
}

func (h *Handler) addNote(c *gin.Context) {
	var req addNoteRequest
	if !bindJSON(c, &req) {
		return
	}
	n, err := h.notes.Create(c.Request.Context(), owner(c), model.NewNote{
		Title: req.Title, Content: req.Content, Tags: req.Tags,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"error": false, "note": convert.ToNote(*n), "message": "Note created successfully"})
}

func (h *Handler) editNote(c *gin.Context) {
	var upd model.NoteUpdate
	if !bindJSON(c, &upd) {
		return
	}
	n, err := h.notes.Update(c.Request.Context(), noteKey(c), upd)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"error": false, "note": convert.ToNote(*n), "message": "Note updated successfully"})
}

func (h *Handler) getAllNotes(c *gin.Context) {
	notes, err := h.notes.ListAll(c.Request.Context(), owner(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"error": false, "notes": convert.ToNotes(notes), "message": "All notes retrieved successfully"})
}

func (h *Handler) deleteNote(c *gin.Context) {
	if err := h.notes.Remove(c.Request.Context(), noteKey(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"error": false, "message": "Note deleted successfully"})
}

func (h *Handler) updateNotePinned(c *gin.Context) {
	var req pinRequest
	if !bindJSON(c, &req) {
		return
	}
	if !req.IsPinned.Set || req.IsPinned.Null {
		h.fail(c, errs.Invalid("isPinned is required"))
		return
	}
	n, err := h.notes.SetPinned(c.Request.Context(), noteKey(c), req.IsPinned.Value)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"error": false, "note": convert.ToNote(*n), "message": "Note updated successfully"})
}

func (h *Handler) searchNotes(c *gin.Context) {
	notes, err := h.notes.Search(c.Request.Context(), owner(c), c.Query("query"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"error": false, "notes": convert.ToNotes(notes), "message": "Notes retrieved successfully"})
}
