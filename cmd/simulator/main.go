package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Booking load simulator: creates trips through the API and fires
// concurrent bookings against them to exercise the capacity ledger under
// contention.

var authToken string

func authorizedPost(url string, body *bytes.Buffer) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	return client.Do(req)
}

type envelope struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data"`
	Error   map[string]interface{} `json:"error"`
}

func decodeEnvelope(resp *http.Response) (*envelope, error) {
	defer resp.Body.Close()
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, err
	}
	return &env, nil
}

func login(apiURL, email, password string) (string, error) {
	payload, _ := json.Marshal(map[string]string{"email": email, "password": password})
	resp, err := authorizedPost(apiURL+"/auth/login", bytes.NewBuffer(payload))
	if err != nil {
		return "", err
	}
	env, err := decodeEnvelope(resp)
	if err != nil {
		return "", err
	}
	if !env.Success {
		return "", fmt.Errorf("login failed: %v", env.Error)
	}
	token, _ := env.Data["token"].(string)
	if token == "" {
		return "", fmt.Errorf("no token in login response")
	}
	return token, nil
}

var routes = [][2]string{
	{"Berlin, Germany", "Warsaw, Poland"},
	{"Paris, France", "Madrid, Spain"},
	{"Amsterdam, Netherlands", "Milan, Italy"},
	{"Vienna, Austria", "Bucharest, Romania"},
	{"Prague, Czechia", "Athens, Greece"},
}

func createTrip(apiURL string, capacity float64) (string, error) {
	route := routes[rand.Intn(len(routes))]
	departure := time.Now().Add(24 * time.Hour)
	payload, _ := json.Marshal(map[string]interface{}{
		"origin":             "Depot 7, " + route[0],
		"destinationAddress": "Depot 2, " + route[1],
		"departureTime":      departure.Format(time.RFC3339),
		"arrivalTime":        departure.Add(18 * time.Hour).Format(time.RFC3339),
		"basePrice":          25.0,
		"pricePerKg":         1.8,
		"minimumPrice":       40.0,
		"currency":           "EUR",
		"totalCapacity":      capacity,
	})
	resp, err := authorizedPost(apiURL+"/trips", bytes.NewBuffer(payload))
	if err != nil {
		return "", err
	}
	env, err := decodeEnvelope(resp)
	if err != nil {
		return "", err
	}
	if !env.Success {
		return "", fmt.Errorf("trip creation failed: %v", env.Error)
	}
	id, _ := env.Data["id"].(string)
	if id == "" {
		return "", fmt.Errorf("no trip id in response")
	}
	log.WithFields(log.Fields{
		"trip_id":  id,
		"route":    route[0] + " -> " + route[1],
		"capacity": capacity,
	}).Info("Created trip")
	return id, nil
}

func bookParcel(apiURL, tripID string, weight float64) {
	payload, _ := json.Marshal(map[string]interface{}{
		"tripId":   tripID,
		"weightKg": weight,
	})
	resp, err := authorizedPost(apiURL+"/bookings", bytes.NewBuffer(payload))
	if err != nil {
		log.WithError(err).Error("Failed to send booking")
		return
	}
	env, err := decodeEnvelope(resp)
	if err != nil {
		log.WithError(err).Error("Failed to decode booking response")
		return
	}
	if env.Success {
		log.WithFields(log.Fields{"trip_id": tripID, "weight_kg": weight}).Info("Booking confirmed")
		return
	}
	code, _ := env.Error["code"].(string)
	log.WithFields(log.Fields{"trip_id": tripID, "weight_kg": weight, "code": code}).Warn("Booking rejected")
}

func main() {
	apiURL := os.Getenv("API_BASE_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080/api"
	}

	authToken = os.Getenv("SIM_AUTH_TOKEN")
	if authToken == "" {
		email := os.Getenv("SIM_EMAIL")
		password := os.Getenv("SIM_PASSWORD")
		if email == "" || password == "" {
			log.Fatal("Set SIM_AUTH_TOKEN or SIM_EMAIL/SIM_PASSWORD")
		}
		token, err := login(apiURL, email, password)
		if err != nil {
			log.WithError(err).Fatal("Login failed")
		}
		authToken = token
	}

	tripCount := 3
	if v := os.Getenv("SIM_TRIPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			tripCount = n
		}
	}
	bookingsPerTrip := 20
	if v := os.Getenv("SIM_BOOKINGS_PER_TRIP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			bookingsPerTrip = n
		}
	}

	log.WithFields(log.Fields{
		"api_url":           apiURL,
		"trips":             tripCount,
		"bookings_per_trip": bookingsPerTrip,
	}).Info("Starting booking simulation")

	tripIDs := make([]string, 0, tripCount)
	for i := 0; i < tripCount; i++ {
		id, err := createTrip(apiURL, 500+rand.Float64()*1500)
		if err != nil {
			log.WithError(err).Error("Failed to create trip")
			continue
		}
		tripIDs = append(tripIDs, id)
	}
	if len(tripIDs) == 0 {
		log.Fatal("No trips created, exiting")
	}

	// Fire all bookings concurrently so some of them race for the last
	// kilograms of each trip.
	var wg sync.WaitGroup
	for _, tripID := range tripIDs {
		for i := 0; i < bookingsPerTrip; i++ {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				bookParcel(apiURL, id, 20+rand.Float64()*120)
			}(tripID)
		}
	}
	wg.Wait()

	log.Info("Booking simulation finished")
}
