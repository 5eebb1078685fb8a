package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/releaseboard/pkg/usecase"
)

type reprocessRequest struct {
	ErrorLogIDs []string `json:"errorLogIds" validate:"omitempty,max=1000,dive,required"`
	StartDate   *string  `json:"startDate"`
	EndDate     *string  `json:"endDate"`
	DryRun      bool     `json:"dryRun"`
}

func healthMetricsHandler(uc *usecase.AnalyticsUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, end, err := queryDateRange(r)
		if err != nil {
			handleError(w, r, err)
			return
		}

		h, err := uc.HealthMetrics(r.Context(), start, end)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, h)
	}
}

func listErrorLogsHandler(uc *usecase.AdminUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := queryInt(r, "page", 0)
		if err != nil {
			handleError(w, r, err)
			return
		}
		size, err := queryInt(r, "size", usecase.DefaultPageSize)
		if err != nil {
			handleError(w, r, err)
			return
		}
		start, end, err := queryDateRange(r)
		if err != nil {
			handleError(w, r, err)
			return
		}

		result, err := uc.ListErrorLogs(r.Context(), usecase.ErrorLogQuery{
			Page:      page,
			Size:      size,
			ErrorType: r.URL.Query().Get("errorType"),
			Start:     start,
			End:       end,
		})
		if err != nil {
			handleError(w, r, err)
			return
		}

		writeJSON(r.Context(), w, http.StatusOK, errorLogPageResponse{
			Content:       mapSlice(result.Entries, toErrorLog),
			Page:          result.Page,
			Size:          result.Size,
			TotalElements: result.TotalCount,
			TotalPages:    result.TotalPages,
		})
	}
}

func getErrorLogHandler(uc *usecase.AdminUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entry, err := uc.GetErrorLog(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, toErrorLog(entry))
	}
}

func reprocessHandler(uc *usecase.ReprocessUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reprocessRequest
		if err := decodeJSON(r, &req); err != nil {
			handleError(w, r, err)
			return
		}
		start, err := optionalDate(req.StartDate, false)
		if err != nil {
			handleError(w, r, err)
			return
		}
		end, err := optionalDate(req.EndDate, true)
		if err != nil {
			handleError(w, r, err)
			return
		}

		result, err := uc.Reprocess(r.Context(), usecase.ReprocessRequest{
			ErrorLogIDs: req.ErrorLogIDs,
			Start:       start,
			End:         end,
			DryRun:      req.DryRun,
		})
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, result)
	}
}

func listDeliveryFailuresHandler(uc *usecase.AdminUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, end, err := queryDateRange(r)
		if err != nil {
			handleError(w, r, err)
			return
		}

		failures, err := uc.ListDeliveryFailures(r.Context(), usecase.DeliveryFailureQuery{
			NotificationID: r.URL.Query().Get("notificationId"),
			Start:          start,
			End:            end,
		})
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, mapSlice(failures, toDeliveryFailure))
	}
}
