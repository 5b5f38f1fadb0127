package handlers

import (
	"net/http"

	"platefinder/metrics"
)

// APIPrefix is the path the restaurant API is mounted under.
const APIPrefix = "/api"

// Register mounts the restaurant API on mux under APIPrefix.
func Register(mux *http.ServeMux, store Store, predictor Predictor) {
	mux.Handle("GET "+APIPrefix+"/restaurants/{$}", metrics.Instrument("list", ListHandler(store)))
	mux.Handle("GET "+APIPrefix+"/restaurants/search/{$}", metrics.Instrument("search", SearchHandler(store)))
	mux.Handle("POST "+APIPrefix+"/restaurants/classify-image/{$}", metrics.Instrument("classify", ClassifyHandler(store, predictor)))
	mux.Handle("GET "+APIPrefix+"/restaurants/{id}/{$}", metrics.Instrument("detail", DetailHandler(store)))
}
