package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/releaseboard/pkg/domain/model"
	"github.com/secmon-lab/releaseboard/pkg/domain/model/auth"
	"github.com/secmon-lab/releaseboard/pkg/usecase"
)

type usageRequest struct {
	ActionType  string            `json:"actionType"`
	FeatureCode *string           `json:"featureCode"`
	ProductCode *string           `json:"productCode"`
	Context     map[string]string `json:"context"`
	Timestamp   *string           `json:"timestamp"`
}

// ingestUsageHandler records a usage event for the caller. Payload problems
// are left to the use case so they reach the error log.
func ingestUsageHandler(uc *usecase.UsageUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req usageRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			handleError(w, r, goerr.Wrap(usecase.ErrValidation, "malformed JSON body", goerr.V("reason", err.Error())))
			return
		}
		ts, err := optionalDate(req.Timestamp, false)
		if err != nil {
			handleError(w, r, err)
			return
		}

		result, err := uc.Ingest(r.Context(), model.UsagePayload{
			UserID:      auth.ActorID(r.Context()),
			ActionType:  req.ActionType,
			FeatureCode: req.FeatureCode,
			ProductCode: req.ProductCode,
			Context:     req.Context,
			Timestamp:   ts,
		})
		if err != nil {
			handleError(w, r, err)
			return
		}

		writeJSON(r.Context(), w, http.StatusCreated, usageResponse{
			Hash:         result.Event.Hash,
			Deduplicated: result.Deduplicated,
			Timestamp:    result.Event.Timestamp,
		})
	}
}

func segmentAnalyticsHandler(uc *usecase.AnalyticsUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, end, err := queryDateRange(r)
		if err != nil {
			handleError(w, r, err)
			return
		}

		results, err := uc.SegmentAnalytics(r.Context(), usecase.SegmentQuery{
			Names:      queryList(r, "segments"),
			CustomTags: r.URL.Query().Get("customTags"),
			Start:      start,
			End:        end,
		})
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, results)
	}
}
