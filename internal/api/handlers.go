package api

import (
	"net/http"
	"strconv"

	"stayfinder/internal/service"
)

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid "+name)
		return 0, false
	}
	return id, true
}

func (s *HTTPServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if !decodeBody(w, r, &in) {
		return
	}

	user, err := s.users.Register(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &in) {
		return
	}

	token, user, err := s.users.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": token, "user": user})
}

func (s *HTTPServer) handleListListings(w http.ResponseWriter, r *http.Request) {
	listings, err := s.listings.GetListings(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"listings": listings})
}

func (s *HTTPServer) handleGetListing(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	listing, err := s.listings.GetListing(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (s *HTTPServer) handleCreateListing(w http.ResponseWriter, r *http.Request) {
	var in service.CreateListingInput
	if !decodeBody(w, r, &in) {
		return
	}

	listing, err := s.listings.CreateListing(r.Context(), userFrom(r.Context()).ID, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, listing)
}

func (s *HTTPServer) handleUpdateListing(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var in service.UpdateListingInput
	if !decodeBody(w, r, &in) {
		return
	}

	listing, err := s.listings.UpdateListing(r.Context(), id, userFrom(r.Context()), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (s *HTTPServer) handleDeleteListing(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := s.listings.DeleteListing(r.Context(), id, userFrom(r.Context())); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "listing deleted"})
}

func (s *HTTPServer) handleListBookings(w http.ResponseWriter, r *http.Request) {
	var listingID int64
	if raw := r.URL.Query().Get("listing_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "validation_error", "invalid listing_id")
			return
		}
		listingID = parsed
	}

	bookings, err := s.bookings.GetBookings(r.Context(), listingID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

func (s *HTTPServer) handleBookingCount(w http.ResponseWriter, r *http.Request) {
	listingID, ok := pathID(w, r, "listingID")
	if !ok {
		return
	}

	count, err := s.bookings.GetBookingCount(r.Context(), listingID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}

func (s *HTTPServer) handleActiveBookingCount(w http.ResponseWriter, r *http.Request) {
	listingID, ok := pathID(w, r, "listingID")
	if !ok {
		return
	}

	count, err := s.bookings.GetActiveBookingCount(r.Context(), listingID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var in service.CreateBookingInput
	if !decodeBody(w, r, &in) {
		return
	}

	booking, err := s.bookings.CreateBooking(r.Context(), userFrom(r.Context()).ID, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (s *HTTPServer) handleMyBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := s.bookings.GetUserBookings(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

func (s *HTTPServer) handleConfirmBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	booking, err := s.bookings.ConfirmBooking(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	user := userFrom(r.Context())
	booking, err := s.bookings.CancelBooking(r.Context(), id, user.ID, user.IsAdmin())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}
