package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/listing/imaging"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/listing/usecase"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/platform/auth"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/platform/logger"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("adpost-service/http-handler")

type Handler struct {
	postings       *usecase.PostingUsecase
	listings       *usecase.ListingUsecase
	logger         *logger.Logger
	maxUploadBytes int64
}

func NewHandler(postings *usecase.PostingUsecase, listings *usecase.ListingUsecase, log *logger.Logger, maxUploadBytes int64) *Handler {
	return &Handler{postings: postings, listings: listings, logger: log, maxUploadBytes: maxUploadBytes}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Handler."+op+": request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorBody(err, status))
}

// redirectMissingListing sends the client back to its listings when the
// listing being edited no longer exists.
func redirectMissingListing(w http.ResponseWriter, err error) bool {
	if !errors.Is(err, domain.ErrListingNotFound) {
		return false
	}
	writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error(), Redirect: usecase.MyListingsPath})
	return true
}

func decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return domain.ErrInvalidListingData
	}
	return nil
}

// session resolves {sid} for the caller.
func (h *Handler) session(r *http.Request) (*usecase.PostingSession, error) {
	return h.postings.Session(chi.URLParam(r, "sid"), auth.UserFromContext(r.Context()))
}

func (h *Handler) StartCreate(w http.ResponseWriter, r *http.Request) {
	sess, err := h.postings.StartCreate(r.Context(), auth.UserFromContext(r.Context()))
	if err != nil {
		h.fail(w, r, "StartCreate", err)
		return
	}
	writeJSON(w, http.StatusCreated, sess.View())
}

func (h *Handler) StartEdit(w http.ResponseWriter, r *http.Request) {
	sess, err := h.postings.StartEdit(r.Context(), auth.UserFromContext(r.Context()), chi.URLParam(r, "id"))
	if redirectMissingListing(w, err) {
		return
	}
	if err != nil {
		h.fail(w, r, "StartEdit", err)
		return
	}
	writeJSON(w, http.StatusCreated, sess.View())
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		h.fail(w, r, "GetSession", err)
		return
	}
	writeJSON(w, http.StatusOK, sess.View())
}

type setFieldsRequest struct {
	Values        map[string]string `json:"values"`
	TermsAccepted *bool             `json:"terms_accepted"`
}

func (h *Handler) SetFields(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		h.fail(w, r, "SetFields", err)
		return
	}
	var req setFieldsRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, "SetFields", err)
		return
	}
	view, err := sess.SetFields(req.Values, req.TermsAccepted)
	if err != nil {
		h.fail(w, r, "SetFields", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) Advance(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		h.fail(w, r, "Advance", err)
		return
	}
	view, err := sess.Advance()
	if err != nil {
		h.fail(w, r, "Advance", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) Retreat(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		h.fail(w, r, "Retreat", err)
		return
	}
	view, err := sess.Retreat()
	if err != nil {
		h.fail(w, r, "Retreat", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) RestoreDraft(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		h.fail(w, r, "RestoreDraft", err)
		return
	}
	view, err := sess.RestoreDraft()
	if err != nil {
		h.fail(w, r, "RestoreDraft", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) DiscardDraft(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		h.fail(w, r, "DiscardDraft", err)
		return
	}
	view, err := sess.DiscardDraft(r.Context())
	if err != nil {
		h.fail(w, r, "DiscardDraft", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) AddFiles(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "Handler.AddFiles")
	defer span.End()

	sess, err := h.session(r)
	if err != nil {
		h.fail(w, r, "AddFiles", err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		h.logger.Warn("Handler.AddFiles: bad multipart body", "error", err)
		h.fail(w, r, "AddFiles", domain.ErrInvalidListingData)
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	uploads := make([]imaging.Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			h.fail(w, r, "AddFiles", domain.ErrInvalidListingData)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			h.fail(w, r, "AddFiles", domain.ErrInvalidListingData)
			return
		}
		uploads = append(uploads, imaging.Upload{Name: fh.Filename, ContentType: fh.Header.Get("Content-Type"), Data: data})
	}
	span.SetAttributes(attribute.Int("files", len(uploads)))

	res, view, err := sess.AddFiles(ctx, uploads)
	if err != nil {
		span.RecordError(err)
		h.fail(w, r, "AddFiles", err)
		return
	}
	writeJSON(w, http.StatusOK, filesResponse{Session: view, Rejected: res.Rejected})
}

func (h *Handler) RemoveImage(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		h.fail(w, r, "RemoveImage", err)
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		h.fail(w, r, "RemoveImage", domain.ErrInvalidListingData)
		return
	}
	view, err := sess.RemoveImage(index)
	if err != nil {
		h.fail(w, r, "RemoveImage", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type reorderRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

func (h *Handler) ReorderImages(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		h.fail(w, r, "ReorderImages", err)
		return
	}
	var req reorderRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, "ReorderImages", err)
		return
	}
	view, err := sess.ReorderImages(req.From, req.To)
	if err != nil {
		h.fail(w, r, "ReorderImages", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type suggestDetailsRequest struct {
	Keywords string `json:"keywords"`
}

func (h *Handler) SuggestDetails(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "Handler.SuggestDetails")
	defer span.End()

	sess, err := h.session(r)
	if err != nil {
		h.fail(w, r, "SuggestDetails", err)
		return
	}
	var req suggestDetailsRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, "SuggestDetails", err)
		return
	}
	view, err := sess.SuggestDetails(ctx, req.Keywords)
	if err != nil {
		span.RecordError(err)
		h.fail(w, r, "SuggestDetails", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) SuggestTags(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "Handler.SuggestTags")
	defer span.End()

	sess, err := h.session(r)
	if err != nil {
		h.fail(w, r, "SuggestTags", err)
		return
	}
	tags, err := sess.SuggestTags(ctx)
	if err != nil {
		span.RecordError(err)
		h.fail(w, r, "SuggestTags", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"tags": tags})
}

type tagRequest struct {
	Tag string `json:"tag"`
}

func (h *Handler) AddTag(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		h.fail(w, r, "AddTag", err)
		return
	}
	var req tagRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, "AddTag", err)
		return
	}
	view, err := sess.AddTag(req.Tag)
	if err != nil {
		h.fail(w, r, "AddTag", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) RemoveTag(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		h.fail(w, r, "RemoveTag", err)
		return
	}
	// query parameter, tags may contain a slash
	tag := r.URL.Query().Get("tag")
	if strings.TrimSpace(tag) == "" {
		h.fail(w, r, "RemoveTag", domain.ErrInvalidListingData)
		return
	}
	view, err := sess.RemoveTag(tag)
	if err != nil {
		h.fail(w, r, "RemoveTag", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	sid := chi.URLParam(r, "sid")
	ctx, span := tracer.Start(r.Context(), "Handler.Submit", oteltrace.WithAttributes(attribute.String("session_id", sid)))
	defer span.End()

	res, err := h.postings.Submit(ctx, sid, user)
	if err != nil {
		span.RecordError(err)
		if redirectMissingListing(w, err) {
			return
		}
		h.fail(w, r, "Submit", err)
		return
	}
	span.SetAttributes(attribute.String("listing_id", res.Listing.ID))
	writeJSON(w, http.StatusOK, submitResponse{Listing: toListingResponse(res.Listing), RedirectTo: res.RedirectTo})
}

func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	if err := h.postings.Close(chi.URLParam(r, "sid"), auth.UserFromContext(r.Context())); err != nil {
		h.fail(w, r, "CloseSession", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetListing(w http.ResponseWriter, r *http.Request) {
	l, err := h.listings.GetListing(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "GetListing", err)
		return
	}
	// pending and declined listings are visible to their owner and admins only
	if l.Status != domain.StatusActive {
		user := auth.UserFromContext(r.Context())
		if user == nil || (user.ID != l.UserID && !user.IsAdmin()) {
			h.fail(w, r, "GetListing", domain.ErrListingNotFound)
			return
		}
	}
	writeJSON(w, http.StatusOK, toListingResponse(l))
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.ParseInt(r.URL.Query().Get("page"), 10, 64)
	limit, _ := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64)

	listings, err := h.listings.ListMine(r.Context(), auth.UserFromContext(r.Context()), page, limit)
	if err != nil {
		h.fail(w, r, "ListMine", err)
		return
	}
	out := make([]listingResponse, 0, len(listings))
	for _, l := range listings {
		out = append(out, toListingResponse(l))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"listings": out})
}

func (h *Handler) DeleteListing(w http.ResponseWriter, r *http.Request) {
	if err := h.listings.DeleteListing(r.Context(), auth.UserFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "DeleteListing", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type moderateRequest struct {
	Status   domain.ListingStatus `json:"status"`
	Verified bool                 `json:"verified"`
}

func (h *Handler) Moderate(w http.ResponseWriter, r *http.Request) {
	var req moderateRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, "Moderate", err)
		return
	}
	l, err := h.listings.Moderate(r.Context(), auth.UserFromContext(r.Context()), chi.URLParam(r, "id"), req.Status, req.Verified)
	if err != nil {
		h.fail(w, r, "Moderate", err)
		return
	}
	writeJSON(w, http.StatusOK, toListingResponse(l))
}
