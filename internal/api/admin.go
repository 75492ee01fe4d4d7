package api

import (
	"fmt"
	"net/http"

	"stayfinder/internal/export"
)

func (s *HTTPServer) handleAdminBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := s.bookings.GetAllBookings(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

func (s *HTTPServer) handleDeleteBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := s.bookings.DeleteBooking(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "booking deleted"})
}

func (s *HTTPServer) handleUsersWithBookings(w http.ResponseWriter, r *http.Request) {
	users, err := s.bookings.GetUsersWithBookings(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

// handleExportBookings streams the administrative bookings view as an xlsx
// attachment.
func (s *HTTPServer) handleExportBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := s.bookings.GetAllBookings(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	now := s.clock.Now()
	fileName := fmt.Sprintf("bookings_%s.xlsx", now.Format("2006-01-02_15-04-05"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))

	if err := export.WriteBookingsWorkbook(w, bookings, now); err != nil {
		s.logger.Error().Err(err).Msg("bookings export failed")
	}
}
