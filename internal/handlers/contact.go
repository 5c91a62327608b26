package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jjudge-oj/contacts/internal/services"
	"github.com/jjudge-oj/contacts/types"
)

// ContactHandler provides HTTP handlers for contacts.
type ContactHandler struct {
	contactService *services.ContactService
}

func NewContactHandler(contactService *services.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

// ContactRouter registers contact routes. The router must already be behind
// RequireAuth.
func ContactRouter(r chi.Router, contactService *services.ContactService) {
	handler := NewContactHandler(contactService)

	r.Post("/contact", handler.CreateContact)
	r.Get("/contacts", handler.ListContacts)
	r.Get("/contacts/search", handler.SearchContacts)
	r.Route("/contact/{contactID}", func(r chi.Router) {
		r.Get("/", handler.GetContact)
		r.Patch("/", handler.UpdateContact)
		r.Delete("/", handler.DeleteContact)
	})
}

type CreateContactRequest struct {
	Name  string  `json:"name" validate:"required,max=100"`
	Email *string `json:"email" validate:"omitempty,max=200,email"`
	Phone *string `json:"phone" validate:"omitempty,max=20"`
}

type UpdateContactRequest struct {
	Name  *string `json:"name" validate:"omitempty,max=100"`
	Email *string `json:"email" validate:"omitempty,max=200,email"`
	Phone *string `json:"phone" validate:"omitempty,max=20"`
}

// Paging describes the page returned by a search.
type Paging struct {
	Page      int `json:"page"`
	Size      int `json:"size"`
	TotalItem int `json:"total_item"`
	TotalPage int `json:"total_page"`
}

// ContactPageResponse is the paginated search response payload.
type ContactPageResponse struct {
	Data   []types.Contact `json:"data"`
	Paging Paging          `json:"paging"`
}

func (h *ContactHandler) CreateContact(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateContactRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	created, err := h.contactService.Create(r.Context(), user.ID, types.Contact{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		writeServiceError(w, r, err, "contact")
		return
	}
	writeData(w, http.StatusCreated, created)
}

func (h *ContactHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	contacts, err := h.contactService.List(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, r, err, "contact")
		return
	}
	writeData(w, http.StatusOK, contacts)
}

func (h *ContactHandler) GetContact(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, ok := parseID(r, "contactID")
	if !ok {
		writeError(w, http.StatusNotFound, "contact not found")
		return
	}

	contact, err := h.contactService.Get(r.Context(), user.ID, id)
	if err != nil {
		writeServiceError(w, r, err, "contact")
		return
	}
	writeData(w, http.StatusOK, contact)
}

func (h *ContactHandler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, ok := parseID(r, "contactID")
	if !ok {
		writeError(w, http.StatusNotFound, "contact not found")
		return
	}

	var req UpdateContactRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	updated, err := h.contactService.Update(r.Context(), user.ID, id, services.ContactPatch{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		writeServiceError(w, r, err, "contact")
		return
	}
	writeData(w, http.StatusOK, updated)
}

func (h *ContactHandler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, ok := parseID(r, "contactID")
	if !ok {
		writeError(w, http.StatusNotFound, "contact not found")
		return
	}

	if err := h.contactService.Delete(r.Context(), user.ID, id); err != nil {
		writeServiceError(w, r, err, "contact")
		return
	}
	writeData(w, http.StatusOK, true)
}

func (h *ContactHandler) SearchContacts(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	page, size, errs := parsePagination(r)
	if errs != nil {
		writeErrors(w, http.StatusBadRequest, errs)
		return
	}

	query := r.URL.Query()
	filter := types.ContactFilter{
		Name:  strings.TrimSpace(query.Get("name")),
		Email: strings.TrimSpace(query.Get("email")),
		Phone: strings.TrimSpace(query.Get("phone")),
	}

	result, err := h.contactService.Search(r.Context(), user.ID, filter, page, size)
	if err != nil {
		writeServiceError(w, r, err, "contact")
		return
	}

	writeJSON(w, http.StatusOK, ContactPageResponse{
		Data: result.Items,
		Paging: Paging{
			Page:      result.Page,
			Size:      result.Size,
			TotalItem: result.Total,
			TotalPage: result.TotalPages,
		},
	})
}
