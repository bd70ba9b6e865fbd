package mapping

import "fmt"

// capacityBounds holds the inclusive per-type limits a vehicle's declared
// transport capacity must fall within.
type capacityBounds struct {
	WeightMin   float64 // in kg
	WeightMax   float64 // in kg
	PackagesMin int
	PackagesMax int
}

var vehicleCapacityBounds = map[string]capacityBounds{
	"VAN":        {WeightMin: 50, WeightMax: 3000, PackagesMin: 1, PackagesMax: 15},
	"TRUCK":      {WeightMin: 500, WeightMax: 15000, PackagesMin: 10, PackagesMax: 100},
	"BUS":        {WeightMin: 100, WeightMax: 500, PackagesMin: 5, PackagesMax: 50},
	"MOTORCYCLE": {WeightMin: 10, WeightMax: 200, PackagesMin: 1, PackagesMax: 5},
	"CAR":        {WeightMin: 20, WeightMax: 500, PackagesMin: 1, PackagesMax: 10},
}

// ValidateVehicleCapacity checks a vehicle's declared weight and package
// capacity against the bounds permitted for its type. The type is given as
// the external token (e.g. "TRUCK"). It runs synchronously before any
// vehicle-creation request reaches persistence.
func ValidateVehicleCapacity(vehicleType string, weightKg float64, packages int) error {
	bounds, ok := vehicleCapacityBounds[vehicleType]
	if !ok {
		return fmt.Errorf("unsupported vehicle type: %s", vehicleType)
	}
	if weightKg < bounds.WeightMin || weightKg > bounds.WeightMax {
		return fmt.Errorf("weight for %s must be between %.0f and %.0f kg, got %.0f",
			vehicleType, bounds.WeightMin, bounds.WeightMax, weightKg)
	}
	if packages < bounds.PackagesMin || packages > bounds.PackagesMax {
		return fmt.Errorf("package count for %s must be between %d and %d, got %d",
			vehicleType, bounds.PackagesMin, bounds.PackagesMax, packages)
	}
	return nil
}
