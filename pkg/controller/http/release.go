package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/releaseboard/pkg/domain/types"
	"github.com/secmon-lab/releaseboard/pkg/usecase"
)

type createReleaseRequest struct {
	Code        string  `json:"code" validate:"required,max=64"`
	ProductCode string  `json:"productCode" validate:"required"`
	Description string  `json:"description" validate:"max=4000"`
	Status      string  `json:"status"`
	ParentCode  string  `json:"parentCode"`
	ReleasedAt  *string `json:"releasedAt"`
}

type updateReleaseRequest struct {
	Description *string `json:"description" validate:"omitempty,max=4000"`
	Status      *string `json:"status"`
	ReleasedAt  *string `json:"releasedAt"`
	ParentCode  *string `json:"parentCode"`
}

func createReleaseHandler(uc *usecase.ReleaseUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createReleaseRequest
		if err := decodeJSON(r, &req); err != nil {
			handleError(w, r, err)
			return
		}
		releasedAt, err := optionalDate(req.ReleasedAt, false)
		if err != nil {
			handleError(w, r, err)
			return
		}

		release, err := uc.CreateRelease(r.Context(), usecase.CreateReleaseInput{
			Code:        req.Code,
			ProductCode: req.ProductCode,
			Description: req.Description,
			Status:      types.ReleaseStatus(req.Status),
			ParentCode:  req.ParentCode,
			ReleasedAt:  releasedAt,
		})
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusCreated, toRelease(release))
	}
}

func listReleasesHandler(uc *usecase.ReleaseUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		releases, err := uc.ListReleases(r.Context(), r.URL.Query().Get("productCode"))
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, mapSlice(releases, toRelease))
	}
}

func getReleaseHandler(uc *usecase.ReleaseUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		release, err := uc.GetRelease(r.Context(), chi.URLParam(r, "code"))
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, toRelease(release))
	}
}

func updateReleaseHandler(uc *usecase.ReleaseUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateReleaseRequest
		if err := decodeJSON(r, &req); err != nil {
			handleError(w, r, err)
			return
		}
		releasedAt, err := optionalDate(req.ReleasedAt, false)
		if err != nil {
			handleError(w, r, err)
			return
		}

		in := usecase.UpdateReleaseInput{
			Description: req.Description,
			ReleasedAt:  releasedAt,
			ParentCode:  req.ParentCode,
		}
		if req.Status != nil {
			status := types.ReleaseStatus(*req.Status)
			in.Status = &status
		}

		result, err := uc.UpdateRelease(r.Context(), chi.URLParam(r, "code"), in)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, releaseUpdateResponse{
			releaseResponse:      toRelease(result.Release),
			NotificationsCreated: len(result.Notifications),
		})
	}
}

func deleteReleaseHandler(uc *usecase.ReleaseUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := uc.DeleteRelease(r.Context(), chi.URLParam(r, "code")); err != nil {
			handleError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func releaseDashboardHandler(uc *usecase.AnalyticsUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := uc.Dashboard(r.Context(), chi.URLParam(r, "code"))
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, d)
	}
}

func releaseMetricsHandler(uc *usecase.AnalyticsUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := uc.ReleaseMetrics(r.Context(), chi.URLParam(r, "code"))
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, m)
	}
}
