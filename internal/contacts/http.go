// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package contacts

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/contactbook/internal/platform/middleware"
	requestutil "github.com/taibuivan/contactbook/internal/platform/request"
	"github.com/taibuivan/contactbook/internal/platform/respond"
	"github.com/taibuivan/contactbook/internal/platform/validate"
	"github.com/taibuivan/contactbook/pkg/pagination"
)

const paramContactID = "contact_id"

// Handler implements the contacts HTTP endpoints.
type Handler struct {
	service *Service
	limiter middleware.WindowLimiter
}

// NewHandler constructs a [Handler]. A nil limiter disables per-route quotas.
func NewHandler(service *Service, limiter middleware.WindowLimiter) *Handler {
	return &Handler{service: service, limiter: limiter}
}

// Routes returns the contacts router. It expects an authenticated user in the context.
//
// # Endpoints
//   - GET    /                      : Page of own contacts.
//   - POST   /                      : Create.
//   - GET    /search_by_elem_body   : Exact match on name, fullname or email.
//   - GET    /search_by_birthday    : Birthdays in the coming week.
//   - GET    /{contact_id}          : Read one.
//   - PUT    /{contact_id}          : Full replace.
//   - DELETE /{contact_id}          : Remove and return.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.With(handler.limit("contacts.list")).Get("/", handler.listContacts)
	router.With(handler.limit("contacts.create")).Post("/", handler.createContact)
	router.With(handler.limit("contacts.search")).Get("/search_by_elem_body", handler.searchContacts)
	router.With(handler.limit("contacts.birthdays")).Get("/search_by_birthday", handler.upcomingBirthdays)
	router.With(handler.limit("contacts.get")).Get("/{contact_id}", handler.getContact)
	router.With(handler.limit("contacts.update")).Put("/{contact_id}", handler.updateContact)
	router.With(handler.limit("contacts.delete")).Delete("/{contact_id}", handler.deleteContact)

	return router
}

func (handler *Handler) limit(route string) func(http.Handler) http.Handler {
	if handler.limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return middleware.LimitRoute(handler.limiter, route)
}

func (handler *Handler) listContacts(writer http.ResponseWriter, request *http.Request) {
	user, err := requestutil.RequiredUser(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)

	items, total, err := handler.service.List(request.Context(), user.ID, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, items, pagination.NewMeta(params, total))
}

func (handler *Handler) getContact(writer http.ResponseWriter, request *http.Request) {
	user, err := requestutil.RequiredUser(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	contactID, err := requestutil.Int64Param(request, paramContactID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	contact, err := handler.service.Get(request.Context(), user.ID, contactID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, contact)
}

func (handler *Handler) createContact(writer http.ResponseWriter, request *http.Request) {
	user, err := requestutil.RequiredUser(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input Input
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	contact, err := handler.service.Create(request.Context(), user.ID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, contact)
}

func (handler *Handler) updateContact(writer http.ResponseWriter, request *http.Request) {
	user, err := requestutil.RequiredUser(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	contactID, err := requestutil.Int64Param(request, paramContactID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input Input
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	contact, err := handler.service.Update(request.Context(), user.ID, contactID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, contact)
}

func (handler *Handler) deleteContact(writer http.ResponseWriter, request *http.Request) {
	user, err := requestutil.RequiredUser(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	contactID, err := requestutil.Int64Param(request, paramContactID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	contact, err := handler.service.Delete(request.Context(), user.ID, contactID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, contact)
}

func (handler *Handler) searchContacts(writer http.ResponseWriter, request *http.Request) {
	user, err := requestutil.RequiredUser(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	criterion, err := CriterionFromQuery(request.URL.Query())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	items, err := handler.service.Search(request.Context(), user.ID, criterion)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, items)
}

func (handler *Handler) upcomingBirthdays(writer http.ResponseWriter, request *http.Request) {
	user, err := requestutil.RequiredUser(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	items, err := handler.service.UpcomingBirthdays(request.Context(), user.ID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, items)
}
