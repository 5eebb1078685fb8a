package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/releaseboard/pkg/usecase"
)

type createProductRequest struct {
	Code        string `json:"code" validate:"required,max=64"`
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=4000"`
}

func createProductHandler(uc *usecase.ProductUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createProductRequest
		if err := decodeJSON(r, &req); err != nil {
			handleError(w, r, err)
			return
		}

		p, err := uc.CreateProduct(r.Context(), req.Code, req.Name, req.Description)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusCreated, toProduct(p))
	}
}

func listProductsHandler(uc *usecase.ProductUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := uc.ListProducts(r.Context())
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, mapSlice(products, toProduct))
	}
}

func getProductHandler(uc *usecase.ProductUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := uc.GetProduct(r.Context(), chi.URLParam(r, "code"))
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, toProduct(p))
	}
}

func deleteProductHandler(uc *usecase.ProductUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := uc.DeleteProduct(r.Context(), chi.URLParam(r, "code")); err != nil {
			handleError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
