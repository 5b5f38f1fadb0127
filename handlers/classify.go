package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/apex/log"

	"platefinder/classifier"
	"platefinder/metrics"
	"platefinder/models"
)

const maxUploadBytes = 10 << 20

// Predictor labels an uploaded image.
type Predictor interface {
	Predict(ctx context.Context, filename string, data []byte) (classifier.Prediction, error)
}

// ClassifyHandler labels the uploaded `image` and returns restaurants serving the matched cuisine.
func ClassifyHandler(store Store, predictor Predictor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "No image uploaded"})
			return
		}
		file, header, err := r.FormFile("image")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "No image uploaded"})
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "No image uploaded"})
			return
		}

		prediction, err := predictor.Predict(r.Context(), header.Filename, data)
		if err != nil {
			log.WithError(err).WithField("file", header.Filename).Error("classification failed")
			writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Error processing image"})
			return
		}

		cuisine, ok := MatchCuisine(prediction.Label)
		metrics.ObserveClassification(cuisine)
		if !ok {
			writeJSON(w, http.StatusBadRequest, errorBody{
				Error:         fmt.Sprintf("Could not determine cuisine from: %s", prediction.Label),
				DetectedLabel: prediction.Label,
			})
			return
		}

		results, err := store.ByCuisine(r.Context(), cuisine)
		if err != nil {
			log.WithError(err).WithField("cuisine", cuisine).Error("cuisine lookup failed")
			writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Something went wrong"})
			return
		}
		if results == nil {
			results = []models.Restaurant{}
		}

		log.WithField("label", prediction.Label).WithField("cuisine", cuisine).Infof("classified %s", header.Filename)
		writeJSON(w, http.StatusOK, models.Classification{
			Cuisine:       cuisine,
			DetectedLabel: prediction.Label,
			Restaurants:   results,
		})
	}
}
