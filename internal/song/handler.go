package song

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/melodia/service/internal/middleware"
	"github.com/melodia/service/internal/response"
)

// Limits caps the size of uploaded files.
type Limits struct {
	MaxAudioBytes int64
	MaxImageBytes int64
}

// Handler holds HTTP handlers for song endpoints.
type Handler struct {
	svc    *Service
	limits Limits
}

// NewHandler creates a new song Handler.
func NewHandler(svc *Service, limits Limits) *Handler {
	return &Handler{svc: svc, limits: limits}
}

// errTooLarge marks a multipart part exceeding its limit.
var errTooLarge = errors.New("file too large")

// Publish godoc
//
//	@Summary		Publish a song
//	@Description	Upload an audio file and a cover image with title and author. Either the song and both files are stored, or nothing is. On failure `stage` names the step that failed.
//	@Tags			songs
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			title	formData	string	true	"Song title"
//	@Param			author	formData	string	true	"Song author"
//	@Param			song	formData	file	true	"Audio file (mp3)"
//	@Param			image	formData	file	true	"Cover image"
//	@Success		201		{object}	response.Envelope{data=Song}
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Failure		413		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Failure		502		{object}	response.Envelope
//	@Router			/songs [post]
func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.limits.MaxAudioBytes+h.limits.MaxImageBytes+(1<<20))
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.TooLarge(w, "upload too large")
			return
		}
		response.BadRequest(w, "invalid multipart payload")
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	audio, err := readPart(r, "song", h.limits.MaxAudioBytes)
	if err != nil {
		writePartError(w, "song", err)
		return
	}
	image, err := readPart(r, "image", h.limits.MaxImageBytes)
	if err != nil {
		writePartError(w, "image", err)
		return
	}

	if len(audio.Data) > 0 && !strings.HasPrefix(audio.ContentType, "audio/") {
		response.BadRequest(w, "song must be an audio file")
		return
	}
	if len(image.Data) > 0 && !strings.HasPrefix(image.ContentType, "image/") {
		response.BadRequest(w, "image must be an image file")
		return
	}

	created, err := h.svc.Publish(r.Context(), PublishRequest{
		OwnerID: ownerID,
		Title:   r.FormValue("title"),
		Author:  r.FormValue("author"),
		Audio:   audio,
		Image:   image,
	})
	if err != nil {
		writePublishError(w, err)
		return
	}

	response.Created(w, created)
}

// Get godoc
//
//	@Summary		Get a song
//	@Tags			songs
//	@Produce		json
//	@Param			id	path		string	true	"Song ID"
//	@Success		200	{object}	response.Envelope{data=Song}
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/songs/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if h.svc.IsNotFound(err) {
			response.NotFound(w, "song not found")
			return
		}
		log.Printf("[SONGS] ERROR get song: %v", err)
		response.InternalError(w)
		return
	}
	response.OK(w, s)
}

// ListRecent godoc
//
//	@Summary		List recent songs
//	@Tags			songs
//	@Produce		json
//	@Param			limit	query		int	false	"Max results (default 50, max 100)"
//	@Success		200		{object}	response.Envelope{data=[]Song}
//	@Failure		400		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/songs [get]
func (h *Handler) ListRecent(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	songs, err := h.svc.ListRecent(r.Context(), limit)
	if err != nil {
		log.Printf("[SONGS] ERROR list recent: %v", err)
		response.InternalError(w)
		return
	}
	response.OK(w, songs)
}

// ListMine godoc
//
//	@Summary		List my songs
//	@Description	Returns the songs published by the authenticated user, newest first.
//	@Tags			songs
//	@Produce		json
//	@Security		BearerAuth
//	@Param			limit	query		int	false	"Max results (default 50, max 100)"
//	@Success		200		{object}	response.Envelope{data=[]Song}
//	@Failure		401		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/users/me/songs [get]
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	songs, err := h.svc.ListByOwner(r.Context(), ownerID, limit)
	if err != nil {
		log.Printf("[SONGS] ERROR list by owner: %v", err)
		response.InternalError(w)
		return
	}
	response.OK(w, songs)
}

// readPart reads an uploaded file. A missing part yields an empty Blob so the service
// reports it together with any other missing field.
func readPart(r *http.Request, field string, limit int64) (Blob, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return Blob{}, nil
		}
		return Blob{}, err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return Blob{}, err
	}
	if int64(len(data)) > limit {
		return Blob{}, errTooLarge
	}

	return Blob{
		Data:        data,
		ContentType: partContentType(header, data),
		Filename:    header.Filename,
	}, nil
}

func partContentType(header *multipart.FileHeader, data []byte) string {
	ct := strings.ToLower(strings.TrimSpace(header.Header.Get("Content-Type")))
	if ct == "" || ct == "application/octet-stream" {
		if len(data) > 0 {
			ct = http.DetectContentType(data)
		}
	}
	return ct
}

func writePartError(w http.ResponseWriter, field string, err error) {
	if errors.Is(err, errTooLarge) {
		response.TooLarge(w, fmt.Sprintf("%s file too large", field))
		return
	}
	response.BadRequest(w, fmt.Sprintf("could not read %s file", field))
}

func writePublishError(w http.ResponseWriter, err error) {
	var pe *PublishError
	if !errors.As(err, &pe) {
		log.Printf("[SONGS] ERROR publish: %v", err)
		response.InternalError(w)
		return
	}

	switch pe.Stage {
	case StageInvalidRequest:
		response.StageError(w, http.StatusBadRequest, string(pe.Stage), pe.Err.Error())
	case StageAudioWrite:
		log.Printf("[SONGS] ERROR publish: %v", err)
		response.StageError(w, http.StatusBadGateway, string(pe.Stage), "failed song upload")
	case StageImageWrite:
		log.Printf("[SONGS] ERROR publish: %v", err)
		response.StageError(w, http.StatusBadGateway, string(pe.Stage), "failed image upload")
	default:
		log.Printf("[SONGS] ERROR publish: %v", err)
		response.StageError(w, http.StatusInternalServerError, string(pe.Stage), "could not save song")
	}
}

func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		response.BadRequest(w, "limit must be a non-negative integer")
		return 0, false
	}
	return limit, true
}
