package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/releaseboard/pkg/domain/interfaces"
	"github.com/secmon-lab/releaseboard/pkg/domain/types"
	"github.com/secmon-lab/releaseboard/pkg/usecase"
)

type createFeatureRequest struct {
	Code                  string  `json:"code" validate:"required,max=64"`
	Title                 string  `json:"title" validate:"required,max=255"`
	Description           string  `json:"description" validate:"max=4000"`
	Status                string  `json:"status"`
	ProductCode           string  `json:"productCode" validate:"required"`
	ReleaseCode           string  `json:"releaseCode"`
	AssignedTo            string  `json:"assignedTo" validate:"max=255"`
	PlannedCompletionDate *string `json:"plannedCompletionDate"`
	ActualCompletionDate  *string `json:"actualCompletionDate"`
	PlanningStatus        string  `json:"planningStatus"`
	FeatureOwner          string  `json:"featureOwner"`
	BlockageReason        string  `json:"blockageReason" validate:"max=4000"`
}

type updateFeatureRequest struct {
	Title                 *string `json:"title" validate:"omitempty,max=255"`
	Description           *string `json:"description" validate:"omitempty,max=4000"`
	Status                *string `json:"status"`
	ReleaseCode           *string `json:"releaseCode"`
	AssignedTo            *string `json:"assignedTo" validate:"omitempty,max=255"`
	PlannedCompletionDate *string `json:"plannedCompletionDate"`
	ActualCompletionDate  *string `json:"actualCompletionDate"`
	PlanningStatus        *string `json:"planningStatus"`
	FeatureOwner          *string `json:"featureOwner"`
	BlockageReason        *string `json:"blockageReason" validate:"omitempty,max=4000"`
}

type dependencyRequest struct {
	DependsOnCode string  `json:"dependsOnFeatureCode" validate:"required"`
	Type          string  `json:"dependencyType" validate:"required"`
	Notes         *string `json:"notes" validate:"omitempty,max=4000"`
}

type updateDependencyRequest struct {
	Type  string  `json:"dependencyType"`
	Notes *string `json:"notes" validate:"omitempty,max=4000"`
}

func createFeatureHandler(uc *usecase.FeatureUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createFeatureRequest
		if err := decodeJSON(r, &req); err != nil {
			handleError(w, r, err)
			return
		}
		planned, err := optionalDate(req.PlannedCompletionDate, false)
		if err != nil {
			handleError(w, r, err)
			return
		}
		actual, err := optionalDate(req.ActualCompletionDate, false)
		if err != nil {
			handleError(w, r, err)
			return
		}

		f, err := uc.CreateFeature(r.Context(), usecase.FeatureInput{
			Code:                  req.Code,
			Title:                 req.Title,
			Description:           req.Description,
			Status:                types.FeatureStatus(req.Status),
			ProductCode:           req.ProductCode,
			ReleaseCode:           req.ReleaseCode,
			AssignedTo:            req.AssignedTo,
			PlannedCompletionDate: planned,
			ActualCompletionDate:  actual,
			PlanningStatus:        types.PlanningStatus(req.PlanningStatus),
			FeatureOwner:          req.FeatureOwner,
			BlockageReason:        req.BlockageReason,
		})
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusCreated, toFeature(f))
	}
}

func listFeaturesHandler(uc *usecase.FeatureUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		features, err := uc.ListFeatures(r.Context(), interfaces.FeatureFilter{
			ProductCode: r.URL.Query().Get("productCode"),
			ReleaseCode: r.URL.Query().Get("releaseCode"),
		})
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, mapSlice(features, toFeature))
	}
}

func getFeatureHandler(uc *usecase.FeatureUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := uc.GetFeature(r.Context(), chi.URLParam(r, "code"))
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, toFeature(f))
	}
}

func updateFeatureHandler(uc *usecase.FeatureUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateFeatureRequest
		if err := decodeJSON(r, &req); err != nil {
			handleError(w, r, err)
			return
		}
		planned, err := optionalDate(req.PlannedCompletionDate, false)
		if err != nil {
			handleError(w, r, err)
			return
		}
		actual, err := optionalDate(req.ActualCompletionDate, false)
		if err != nil {
			handleError(w, r, err)
			return
		}

		in := usecase.FeatureUpdateInput{
			Title:                 req.Title,
			Description:           req.Description,
			ReleaseCode:           req.ReleaseCode,
			AssignedTo:            req.AssignedTo,
			PlannedCompletionDate: planned,
			ActualCompletionDate:  actual,
			FeatureOwner:          req.FeatureOwner,
			BlockageReason:        req.BlockageReason,
		}
		if req.Status != nil {
			status := types.FeatureStatus(*req.Status)
			in.Status = &status
		}
		if req.PlanningStatus != nil {
			ps := types.PlanningStatus(*req.PlanningStatus)
			in.PlanningStatus = &ps
		}

		f, err := uc.UpdateFeature(r.Context(), chi.URLParam(r, "code"), in)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, toFeature(f))
	}
}

func deleteFeatureHandler(uc *usecase.FeatureUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := uc.DeleteFeature(r.Context(), chi.URLParam(r, "code")); err != nil {
			handleError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func addDependencyHandler(uc *usecase.FeatureUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dependencyRequest
		if err := decodeJSON(r, &req); err != nil {
			handleError(w, r, err)
			return
		}

		dep, err := uc.AddDependency(r.Context(), chi.URLParam(r, "code"), req.DependsOnCode,
			types.DependencyType(req.Type), req.Notes)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusCreated, toDependency(dep))
	}
}

func listDependenciesHandler(uc *usecase.FeatureUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deps, err := uc.ListDependencies(r.Context(), chi.URLParam(r, "code"))
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, mapSlice(deps, toDependency))
	}
}

func updateDependencyHandler(uc *usecase.FeatureUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateDependencyRequest
		if err := decodeJSON(r, &req); err != nil {
			handleError(w, r, err)
			return
		}

		dep, err := uc.UpdateDependency(r.Context(), chi.URLParam(r, "code"), chi.URLParam(r, "dependsOn"),
			types.DependencyType(req.Type), req.Notes)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, toDependency(dep))
	}
}

func removeDependencyHandler(uc *usecase.FeatureUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := uc.RemoveDependency(r.Context(), chi.URLParam(r, "code"), chi.URLParam(r, "dependsOn")); err != nil {
			handleError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
