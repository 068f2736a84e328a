package handlers

import (
	"net/http"
	"strconv"

	"nekocare/internal/auth"
	"nekocare/internal/care"
	dom "nekocare/internal/domain"
	"nekocare/internal/dto"
	"nekocare/internal/service"
	"nekocare/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const photoField = "photo"

type IncidentHandler struct {
	svc *service.IncidentService
	log *zap.Logger
}

func NewIncidentHandler(svc *service.IncidentService, log *zap.Logger) *IncidentHandler {
	return &IncidentHandler{svc: svc, log: log}
}

// List godoc
// @Summary      List incidents
// @Tags         incidents
// @Produce      json
// @Security     CookieAuth
// @Param        open  query     bool  false  "Only active and monitoring incidents"
// @Success      200   {object}  dto.ListIncidentsResponse
// @Router       /incidents [get]
func (h *IncidentHandler) List(c *gin.Context) {
	openOnly, _ := strconv.ParseBool(c.DefaultQuery("open", "false"))
	items, err := h.svc.List(c.Request.Context(), auth.HouseholdIDFromContext(c), openOnly)
	if err != nil {
		writeError(c, h.log, "list incidents", err)
		return
	}
	locale := c.GetHeader("Accept-Language")
	out := dto.ListIncidentsResponse{Items: make([]dto.IncidentResponse, len(items))}
	for i, inc := range items {
		out.Items[i] = h.toResponse(inc, locale)
	}
	c.JSON(http.StatusOK, out)
}

// Create godoc
// @Summary      Report an incident
// @Description  Status defaults to active. Photos are object paths returned by the upload endpoint.
// @Tags         incidents
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      dto.IncidentCreateRequest  true  "Incident"
// @Success      201   {object}  dto.IncidentResponse
// @Failure      400   {object}  map[string]string
// @Router       /incidents [post]
func (h *IncidentHandler) Create(c *gin.Context) {
	var req dto.IncidentCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	inc, err := h.svc.Create(c.Request.Context(), auth.HouseholdIDFromContext(c), auth.UserIDFromContext(c), service.NewIncident{
		CatID:  req.CatID,
		Type:   dom.IncidentType(req.Type),
		Note:   req.Note,
		Photos: req.Photos,
		Status: req.Status,
	})
	if err != nil {
		writeError(c, h.log, "create incident", err)
		return
	}
	c.JSON(http.StatusCreated, h.toResponse(inc, c.GetHeader("Accept-Language")))
}

// Get godoc
// @Summary      Get an incident with its timeline
// @Tags         incidents
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      int  true  "Incident ID"
// @Success      200  {object}  dto.IncidentResponse
// @Failure      404  {object}  map[string]string
// @Router       /incidents/{id} [get]
func (h *IncidentHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	inc, err := h.svc.Get(c.Request.Context(), auth.HouseholdIDFromContext(c), id)
	if err != nil {
		writeError(c, h.log, "get incident", err)
		return
	}
	c.JSON(http.StatusOK, h.toResponse(inc, c.GetHeader("Accept-Language")))
}

// AddUpdate godoc
// @Summary      Append to an incident timeline
// @Description  Adds a note, photos or a status change. Resolved incidents accept notes only.
// @Tags         incidents
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path      int                        true  "Incident ID"
// @Param        body  body      dto.IncidentUpdateRequest  true  "Update"
// @Success      200   {object}  dto.IncidentResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /incidents/{id}/updates [post]
func (h *IncidentHandler) AddUpdate(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.IncidentUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	inc, err := h.svc.AddUpdate(c.Request.Context(), auth.HouseholdIDFromContext(c), auth.UserIDFromContext(c), id,
		service.IncidentChange{Note: req.Note, Photos: req.Photos, Status: req.Status})
	if err != nil {
		writeError(c, h.log, "update incident", err)
		return
	}
	c.JSON(http.StatusOK, h.toResponse(inc, c.GetHeader("Accept-Language")))
}

// UploadPhoto godoc
// @Summary      Upload an incident photo
// @Description  Stores the file and returns its object path plus a signed URL. Pass the path in photos when creating or updating an incident.
// @Tags         incidents
// @Accept       multipart/form-data
// @Produce      json
// @Security     CookieAuth
// @Param        photo  formData  file  true  "Image (jpg, png, webp, heic)"
// @Success      201    {object}  dto.PhotoResponse
// @Failure      400    {object}  map[string]string
// @Router       /incidents/photos [post]
func (h *IncidentHandler) UploadPhoto(c *gin.Context) {
	fh, err := c.FormFile(photoField)
	if err != nil {
		bindError(c, err)
		return
	}
	f, err := fh.Open()
	if err != nil {
		bindError(c, err)
		return
	}
	defer f.Close()

	p, err := h.svc.UploadPhoto(c.Request.Context(), auth.HouseholdIDFromContext(c), fh.Filename, f)
	if err != nil {
		writeError(c, h.log, "upload photo", err)
		return
	}
	c.JSON(http.StatusCreated, h.photo(p))
}

func (h *IncidentHandler) photo(p string) dto.PhotoResponse {
	u, err := h.svc.PhotoURL(p, storage.ImageOptions{})
	if err != nil {
		h.log.Warn("sign photo url", zap.String("path", p), zap.Error(err))
		u = ""
	}
	return dto.PhotoResponse{Path: p, URL: u}
}

func (h *IncidentHandler) photos(paths []string) []dto.PhotoResponse {
	out := make([]dto.PhotoResponse, len(paths))
	for i, p := range paths {
		out[i] = h.photo(p)
	}
	return out
}

func (h *IncidentHandler) toResponse(inc dom.Incident, locale string) dto.IncidentResponse {
	out := dto.IncidentResponse{
		ID:          inc.ID,
		CatID:       inc.CatID,
		Type:        string(inc.Type),
		Note:        inc.Note,
		Photos:      h.photos(inc.Photos),
		Status:      string(inc.Status),
		StatusLabel: care.StatusLabel(inc.Status, locale),
		CreatedBy:   inc.CreatedBy,
		CreatedAt:   inc.CreatedAt,
		UpdatedAt:   inc.UpdatedAt,
		Updates:     make([]dto.IncidentUpdateResponse, len(inc.Updates)),
	}
	for i, u := range inc.Updates {
		ur := dto.IncidentUpdateResponse{
			ID:        u.ID,
			Note:      u.Note,
			Photos:    h.photos(u.Photos),
			CreatedBy: u.CreatedBy,
			CreatedAt: u.CreatedAt,
		}
		if u.Status != nil {
			s := string(*u.Status)
			ur.Status = &s
		}
		out.Updates[i] = ur
	}
	return out
}
