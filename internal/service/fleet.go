package service

import (
	"context"
	"sort"
	"strings"

	"github.com/parcelio/fleet-core/internal/db"
	"github.com/parcelio/fleet-core/internal/models"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
)

// FleetService computes read-only summary views over a fleet's vehicles,
// drivers, trips and alerts. All overview fields are recomputed per request
// by folding over the fetched collections; nothing is cached.
type FleetService struct {
	vehicles db.VehicleCollection
	drivers  db.DriverCollection
	trips    db.TripCollection
	alerts   db.AlertCollection
}

// NewFleetService creates a new fleet aggregation service
func NewFleetService(vehicles db.VehicleCollection, drivers db.DriverCollection, trips db.TripCollection, alerts db.AlertCollection) *FleetService {
	return &FleetService{
		vehicles: vehicles,
		drivers:  drivers,
		trips:    trips,
		alerts:   alerts,
	}
}

// FleetOverview holds the folded per-status counts and rollups.
type FleetOverview struct {
	TotalVehicles       int     `json:"total_vehicles"`
	ActiveVehicles      int     `json:"active_vehicles"`
	MaintenanceVehicles int     `json:"maintenance_vehicles"`
	InactiveVehicles    int     `json:"inactive_vehicles"`
	TotalDrivers        int     `json:"total_drivers"`
	AvailableDrivers    int     `json:"available_drivers"`
	OnTripDrivers       int     `json:"on_trip_drivers"`
	ActiveTrips         int     `json:"active_trips"`
	ScheduledTrips      int     `json:"scheduled_trips"`
	CompletedTrips      int     `json:"completed_trips"`
	CancelledTrips      int     `json:"cancelled_trips"`
	TotalRevenue        float64 `json:"total_revenue"`
	UtilizationPct      float64 `json:"utilization_pct"`
}

// FleetAnalytics holds derived fleet-wide ratios.
type FleetAnalytics struct {
	AverageDriverRating float64 `json:"average_driver_rating"`
	AverageOnTimeRate   float64 `json:"average_on_time_rate"`
	RevenuePerTrip      float64 `json:"revenue_per_trip"`
}

// FleetDashboard is the aggregated response for the fleet overview
// endpoint. Degraded is set when one or more upstream collections could not
// be read; the affected sources are listed and their data is empty, so a
// caller can tell "empty fleet" from "source unavailable".
type FleetDashboard struct {
	Overview        FleetOverview    `json:"overview"`
	Vehicles        []models.Vehicle `json:"vehicles"`
	Drivers         []models.Driver  `json:"drivers"`
	Alerts          []models.Alert   `json:"alerts"`
	Analytics       FleetAnalytics   `json:"analytics"`
	Pagination      Pagination       `json:"pagination"`
	Degraded        bool             `json:"degraded,omitempty"`
	DegradedSources []string         `json:"degraded_sources,omitempty"`
}

// DashboardQuery filters and paginates the fleet dashboard.
type DashboardQuery struct {
	Status    string // vehicle status filter, internal vocabulary
	SortBy    string // "status", "brand", "year", "licensePlate"
	SortOrder string // "asc" (default) or "desc"
	Page      int
	Limit     int
}

// GetDashboard folds the organization's vehicles, drivers, trips and alerts
// into the dashboard view. A failing source degrades the response instead
// of erroring so dashboards render what is available.
func (s *FleetService) GetDashboard(ctx context.Context, actor *models.Claims, q DashboardQuery) (*FleetDashboard, error) {
	orgFilter := bson.M{"organization_id": actor.OrganizationID}
	dashboard := &FleetDashboard{}

	vehicles, err := s.vehicles.FindVehicles(ctx, orgFilter)
	if err != nil {
		s.degrade(dashboard, "vehicles", err)
	}
	drivers, err := s.drivers.FindDrivers(ctx, orgFilter)
	if err != nil {
		s.degrade(dashboard, "drivers", err)
	}
	trips, err := s.trips.FindTrips(ctx, orgFilter)
	if err != nil {
		s.degrade(dashboard, "trips", err)
	}
	alerts, err := s.alerts.FindAlerts(ctx, orgFilter)
	if err != nil {
		s.degrade(dashboard, "alerts", err)
	}

	dashboard.Overview = foldOverview(vehicles, drivers, trips)
	dashboard.Analytics = foldAnalytics(drivers, trips, dashboard.Overview)
	dashboard.Drivers = drivers
	dashboard.Alerts = alerts

	if q.Status != "" {
		filtered := vehicles[:0]
		for _, v := range vehicles {
			if v.Status == q.Status {
				filtered = append(filtered, v)
			}
		}
		vehicles = filtered
	}
	SortVehicles(vehicles, q.SortBy, q.SortOrder)
	start, end, pagination := paginate(len(vehicles), q.Page, q.Limit)
	dashboard.Vehicles = vehicles[start:end]
	dashboard.Pagination = pagination

	return dashboard, nil
}

func (s *FleetService) degrade(d *FleetDashboard, source string, err error) {
	log.WithError(err).WithField("source", source).Warn("fleet source unavailable, degrading dashboard")
	d.Degraded = true
	d.DegradedSources = append(d.DegradedSources, source)
}

func foldOverview(vehicles []models.Vehicle, drivers []models.Driver, trips []models.Trip) FleetOverview {
	var o FleetOverview

	o.TotalVehicles = len(vehicles)
	for _, v := range vehicles {
		switch v.Status {
		case models.VehicleActive:
			o.ActiveVehicles++
		case models.VehicleMaintenance:
			o.MaintenanceVehicles++
		case models.VehicleInactive:
			o.InactiveVehicles++
		}
	}

	o.TotalDrivers = len(drivers)
	for _, d := range drivers {
		if d.Status == models.DriverOnTrip {
			o.OnTripDrivers++
		}
		if d.Available() {
			o.AvailableDrivers++
		}
	}

	var totalCapacity, bookedCapacity float64
	for _, t := range trips {
		switch t.Status {
		case models.TripInProgress:
			o.ActiveTrips++
		case models.TripScheduled, models.TripPlanned:
			o.ScheduledTrips++
		case models.TripCompleted:
			o.CompletedTrips++
		case models.TripCancelled:
			o.CancelledTrips++
		}
		if t.Status != models.TripCancelled {
			o.TotalRevenue += t.Revenue()
			totalCapacity += t.TotalCapacity
			bookedCapacity += t.BookedWeight()
		}
	}
	if totalCapacity > 0 {
		o.UtilizationPct = bookedCapacity / totalCapacity * 100
	}
	return o
}

func foldAnalytics(drivers []models.Driver, trips []models.Trip, overview FleetOverview) FleetAnalytics {
	var a FleetAnalytics
	if len(drivers) > 0 {
		var rating, onTime float64
		for _, d := range drivers {
			rating += d.Rating
			onTime += d.OnTimeRate
		}
		a.AverageDriverRating = rating / float64(len(drivers))
		a.AverageOnTimeRate = onTime / float64(len(drivers))
	}
	revenueTrips := 0
	for _, t := range trips {
		if t.Status != models.TripCancelled && t.BookedWeight() > 0 {
			revenueTrips++
		}
	}
	if revenueTrips > 0 {
		a.RevenuePerTrip = overview.TotalRevenue / float64(revenueTrips)
	}
	return a
}

// SortVehicles sorts vehicles stably by the requested field, ascending by
// default. The license plate is the tie-break key and the fallback when the
// requested field does not discriminate; descending order flips the
// comparison only, never the tie-break.
func SortVehicles(vehicles []models.Vehicle, sortBy, sortOrder string) {
	desc := sortOrder == "desc"
	sort.SliceStable(vehicles, func(i, j int) bool {
		a, b := vehicles[i], vehicles[j]
		cmp := 0
		switch sortBy {
		case "status":
			cmp = strings.Compare(a.Status, b.Status)
		case "brand":
			cmp = strings.Compare(a.Brand, b.Brand)
		case "year":
			cmp = a.Year - b.Year
		}
		if cmp == 0 {
			return a.LicensePlate < b.LicensePlate
		}
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
}

// SortTrips sorts trips stably by the requested field (departureTime,
// revenue, status or createdAt), ascending by default. The trip id is the
// tie-break key; descending order flips the comparison only.
func SortTrips(trips []models.Trip, sortBy, sortOrder string) {
	desc := sortOrder == "desc"
	sort.SliceStable(trips, func(i, j int) bool {
		a, b := trips[i], trips[j]
		cmp := 0
		switch sortBy {
		case "departureTime":
			switch {
			case a.DepartureTime.Before(b.DepartureTime):
				cmp = -1
			case a.DepartureTime.After(b.DepartureTime):
				cmp = 1
			}
		case "revenue":
			switch {
			case a.Revenue() < b.Revenue():
				cmp = -1
			case a.Revenue() > b.Revenue():
				cmp = 1
			}
		case "status":
			cmp = strings.Compare(a.Status, b.Status)
		case "createdAt":
			switch {
			case a.CreatedAt.Before(b.CreatedAt):
				cmp = -1
			case a.CreatedAt.After(b.CreatedAt):
				cmp = 1
			}
		}
		if cmp == 0 {
			return a.ID.Hex() < b.ID.Hex()
		}
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
}

// PaginateTrips slices a sorted trip list deterministically.
func PaginateTrips(trips []models.Trip, page, limit int) ([]models.Trip, Pagination) {
	start, end, pagination := paginate(len(trips), page, limit)
	return trips[start:end], pagination
}
