package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/apex/log"

	"platefinder/database"
)

type errorBody struct {
	Error         string `json:"error"`
	DetectedLabel string `json:"detected_label,omitempty"`
}

type detailBody struct {
	Detail string `json:"detail"`
}

// ListHandler returns the full restaurant collection.
func ListHandler(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results, err := store.All(r.Context())
		if err != nil {
			log.WithError(err).Error("list restaurants failed")
			writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Something went wrong"})
			return
		}
		writeJSON(w, http.StatusOK, results)
	}
}

// DetailHandler returns one restaurant by the {id} path value.
func DetailHandler(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			writeJSON(w, http.StatusNotFound, detailBody{Detail: "Not found."})
			return
		}

		res, err := store.ByID(r.Context(), id)
		if errors.Is(err, database.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, detailBody{Detail: "Not found."})
			return
		}
		if err != nil {
			log.WithError(err).WithField("id", id).Error("get restaurant failed")
			writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Something went wrong"})
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("write response failed")
	}
}
