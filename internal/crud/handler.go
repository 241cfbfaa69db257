package crud

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/listquery"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/mutation"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/pkg/utilities"
)

// Handler exposes a Resource over HTTP for the console gateway.
type Handler[T any] struct {
	res      *Resource[T]
	validate Validator
	logger   *zap.SugaredLogger
}

type HandlerOption[T any] func(*Handler[T])

// WithValidator checks create and update bodies before they are sent.
func WithValidator[T any](v Validator) HandlerOption[T] {
	return func(h *Handler[T]) { h.validate = v }
}

func NewHandler[T any](res *Resource[T], logger *zap.SugaredLogger, opts ...HandlerOption[T]) *Handler[T] {
	h := &Handler[T]{res: res, logger: utilities.OrNop(logger)}
	for _, o := range opts {
		o(h)
	}
	return h
}

func (h *Handler[T]) Resource() *Resource[T] { return h.res }

func (h *Handler[T]) Register(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	if h.res.ReadOnly() {
		return
	}
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// reserved query keys; anything else is a filter.
var listKeys = map[string]bool{
	"page": true, "limit": true, "sortBy": true, "order": true, "search": true, "toggle": true,
}

// ParseListQuery reads page (1-based), limit, sortBy, order, search and
// filters from q. toggle=<key> asks for the sort toggle rule instead of an
// explicit direction.
func ParseListQuery(q url.Values) (u listquery.Update, toggle string, err error) {
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return u, "", errors.New("page must be a positive integer")
		}
		n--
		u.Page = &n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return u, "", errors.New("limit must be a positive integer")
		}
		u.PageSize = &n
	}
	if q.Has("sortBy") {
		s := listquery.SortConfig{Key: q.Get("sortBy"), Direction: listquery.ParseDirection(q.Get("order"))}
		u.Sort = &s
	}
	if q.Has("search") {
		s := q.Get("search")
		u.Search = &s
	}
	for k, v := range q {
		if listKeys[k] || len(v) == 0 {
			continue
		}
		if u.Filters == nil {
			u.Filters = map[string]string{}
		}
		u.Filters[k] = v[0]
	}
	return u, strings.TrimSpace(q.Get("toggle")), nil
}

// List updates the bound controller from the query string and returns its
// view.
func (h *Handler[T]) List(w http.ResponseWriter, r *http.Request) {
	u, toggle, err := ParseListQuery(r.URL.Query())
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	list := h.res.List()
	u.Toggle = toggle
	err = list.Apply(r.Context(), u)
	if err != nil && !errors.Is(err, listquery.ErrSuperseded) {
		h.logger.Debugw("list fetch failed", "path", h.res.Path(), "err", err)
	}
	v := list.View()
	status := http.StatusOK
	if v.Err != nil && !v.Loaded {
		status = StatusFor(v.Err)
	}
	WriteJSON(w, status, v)
}

func (h *Handler[T]) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	v, err := h.res.Get(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, v)
}

func (h *Handler[T]) Create(w http.ResponseWriter, r *http.Request) {
	body, ok := h.body(w, r, false)
	if !ok {
		return
	}
	v, err := h.res.Create(r.Context(), body)
	WriteMutation(w, http.StatusCreated, v, err)
}

func (h *Handler[T]) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	body, ok := h.body(w, r, true)
	if !ok {
		return
	}
	v, err := h.res.Update(r.Context(), id, body)
	WriteMutation(w, http.StatusOK, v, err)
}

// Delete requires ?confirm=true; the confirmation is the caller's.
func (h *Handler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	c := mutation.ConfirmFunc(func(_ context.Context, _ string) (bool, error) { return confirmed, nil })
	err := h.res.Delete(r.Context(), id, c)
	WriteMutation(w, http.StatusNoContent, nil, err)
}

func (h *Handler[T]) id(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, ErrMissingID)
		return 0, false
	}
	return id, true
}

func (h *Handler[T]) body(w http.ResponseWriter, r *http.Request, update bool) (json.RawMessage, bool) {
	var body json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.logger.Debugw("invalid payload", "path", h.res.Path(), "err", err)
		WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return nil, false
	}
	if h.validate != nil {
		if err := h.validate(body, update); err != nil {
			WriteError(w, err)
			return nil, false
		}
	}
	return body, true
}
