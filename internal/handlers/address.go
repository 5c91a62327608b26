package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jjudge-oj/contacts/internal/services"
	"github.com/jjudge-oj/contacts/types"
)

// AddressHandler provides HTTP handlers for the addresses of a contact.
type AddressHandler struct {
	addressService *services.AddressService
}

func NewAddressHandler(addressService *services.AddressService) *AddressHandler {
	return &AddressHandler{addressService: addressService}
}

// AddressRouter registers address routes. The router must already be behind
// RequireAuth.
func AddressRouter(r chi.Router, addressService *services.AddressService) {
	handler := NewAddressHandler(addressService)

	r.Route("/contacts/{contactID}/addresses", func(r chi.Router) {
		r.Post("/", handler.CreateAddress)
		r.Get("/", handler.ListAddresses)
		r.Route("/{addressID}", func(r chi.Router) {
			r.Get("/", handler.GetAddress)
			r.Put("/", handler.UpdateAddress)
			r.Delete("/", handler.DeleteAddress)
		})
	})
}

// AddressRequest is the body of both create and update. On update every
// field is written, so an omitted field clears the stored value.
type AddressRequest struct {
	Street     *string `json:"street" validate:"omitempty,max=200"`
	City       *string `json:"city" validate:"omitempty,max=100"`
	Province   *string `json:"province" validate:"omitempty,max=100"`
	Country    *string `json:"country" validate:"omitempty,max=100"`
	PostalCode *string `json:"postal_code" validate:"omitempty,max=10"`
}

func (req AddressRequest) address() types.Address {
	return types.Address{
		Street:     req.Street,
		City:       req.City,
		Province:   req.Province,
		Country:    req.Country,
		PostalCode: req.PostalCode,
	}
}

// addressScope extracts the caller and the contact id, writing the error
// response itself when either is missing.
func addressScope(w http.ResponseWriter, r *http.Request) (userID, contactID int64, ok bool) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return 0, 0, false
	}
	contactID, ok = parseID(r, "contactID")
	if !ok {
		writeError(w, http.StatusNotFound, "contact not found")
		return 0, 0, false
	}
	return user.ID, contactID, true
}

func (h *AddressHandler) CreateAddress(w http.ResponseWriter, r *http.Request) {
	userID, contactID, ok := addressScope(w, r)
	if !ok {
		return
	}

	var req AddressRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	created, err := h.addressService.Create(r.Context(), userID, contactID, req.address())
	if err != nil {
		writeServiceError(w, r, err, "contact")
		return
	}
	writeData(w, http.StatusCreated, created)
}

func (h *AddressHandler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	userID, contactID, ok := addressScope(w, r)
	if !ok {
		return
	}

	addresses, err := h.addressService.List(r.Context(), userID, contactID)
	if err != nil {
		writeServiceError(w, r, err, "contact")
		return
	}
	writeData(w, http.StatusOK, addresses)
}

func (h *AddressHandler) GetAddress(w http.ResponseWriter, r *http.Request) {
	userID, contactID, ok := addressScope(w, r)
	if !ok {
		return
	}
	id, ok := parseID(r, "addressID")
	if !ok {
		writeError(w, http.StatusNotFound, "address not found")
		return
	}

	address, err := h.addressService.Get(r.Context(), userID, contactID, id)
	if err != nil {
		writeServiceError(w, r, err, "address")
		return
	}
	writeData(w, http.StatusOK, address)
}

func (h *AddressHandler) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	userID, contactID, ok := addressScope(w, r)
	if !ok {
		return
	}
	id, ok := parseID(r, "addressID")
	if !ok {
		writeError(w, http.StatusNotFound, "address not found")
		return
	}

	var req AddressRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	updated, err := h.addressService.Update(r.Context(), userID, contactID, id, req.address())
	if err != nil {
		writeServiceError(w, r, err, "address")
		return
	}
	writeData(w, http.StatusOK, updated)
}

func (h *AddressHandler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	userID, contactID, ok := addressScope(w, r)
	if !ok {
		return
	}
	id, ok := parseID(r, "addressID")
	if !ok {
		writeError(w, http.StatusNotFound, "address not found")
		return
	}

	if err := h.addressService.Delete(r.Context(), userID, contactID, id); err != nil {
		writeServiceError(w, r, err, "address")
		return
	}
	writeData(w, http.StatusOK, true)
}
