package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/releaseboard/pkg/usecase"
	"github.com/secmon-lab/releaseboard/pkg/utils/logging"
	"github.com/secmon-lab/releaseboard/pkg/utils/safe"
)

// trackingPixel is a 1x1 transparent GIF
var trackingPixel = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00, 0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00,
	0x01, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}

func listNotificationsHandler(uc *usecase.NotificationUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		unread, err := queryBool(r, "unread")
		if err != nil {
			handleError(w, r, err)
			return
		}

		list, err := uc.List(r.Context(), unread)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, mapSlice(list, toNotification))
	}
}

func markNotificationReadHandler(uc *usecase.NotificationUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := uc.MarkRead(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, toNotification(n))
	}
}

// trackingPixelHandler marks a notification read when its email is opened.
// The response body is the same pixel whatever the outcome.
func trackingPixelHandler(uc *usecase.NotificationUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		if err := uc.TrackOpen(r.Context(), chi.URLParam(r, "id")); err != nil {
			status = statusOf(err)
			logging.From(r.Context()).Info("tracking pixel rejected", "status", status, "error", err.Error())
		}

		w.Header().Set("Content-Type", "image/gif")
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
		w.WriteHeader(status)
		safe.Write(r.Context(), w, trackingPixel)
	}
}
