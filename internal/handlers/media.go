package handlers

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"nekocare/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MediaHandler serves stored photos behind signed URLs. It needs no session;
// the token is the credential.
type MediaHandler struct {
	store  *storage.Store
	signer *storage.URLSigner
	log    *zap.Logger
}

func NewMediaHandler(store *storage.Store, signer *storage.URLSigner, log *zap.Logger) *MediaHandler {
	return &MediaHandler{store: store, signer: signer, log: log}
}

// Get godoc
// @Summary      Fetch a stored photo
// @Tags         media
// @Produce      octet-stream
// @Param        path   path   string  true  "Object path"
// @Param        token  query  string  true  "Signed token"
// @Success      200
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /media/{path} [get]
func (h *MediaHandler) Get(c *gin.Context) {
	p := strings.TrimPrefix(c.Param("path"), "/")
	grant, err := h.signer.Verify(c.Query("token"))
	if err != nil || grant.Path != p {
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid media token"})
		return
	}
	f, err := h.store.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, storage.ErrInvalidPath) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		h.log.Error("open media", zap.String("path", p), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "media unavailable"})
		return
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		h.log.Error("stat media", zap.String("path", p), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "media unavailable"})
		return
	}
	c.Header("Cache-Control", "private, max-age=300")
	http.ServeContent(c.Writer, c.Request, st.Name(), st.ModTime(), f)
}
