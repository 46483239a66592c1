package domain

import (
	"encoding/json"
	"fmt"
)

// VehicleClass is the vehicle category assigned by the roadside measurement
// loops, based on the estimated vehicle length.
type VehicleClass string

const (
	// ClassMotorcycle covers vehicles shorter than 1 m. The occasional
	// measurements in this class are unreliable and unused upstream.
	ClassMotorcycle VehicleClass = "MOTORCYCLE"
	// ClassCar covers vehicles between 1.00 m and 4.90 m.
	ClassCar VehicleClass = "CAR"
	// ClassMinivan covers vehicles between 4.90 m and 6.90 m.
	ClassMinivan VehicleClass = "MINIVAN"
	// ClassRigidLorries covers vehicles between 6.90 m and 12.00 m.
	ClassRigidLorries VehicleClass = "RIGID_LORRIES"
	// ClassTruckOrBus covers (semi-)trailers and busses longer than 12.00 m.
	ClassTruckOrBus VehicleClass = "TRUCK_OR_BUS"
	// ClassUnknown is unreliable by definition.
	ClassUnknown VehicleClass = "UNKNOWN"
)

// VehicleClasses lists every known class.
var VehicleClasses = []VehicleClass{
	ClassMotorcycle,
	ClassCar,
	ClassMinivan,
	ClassRigidLorries,
	ClassTruckOrBus,
	ClassUnknown,
}

var vehicleClassCodes = map[VehicleClass]int{
	ClassMotorcycle:   1,
	ClassCar:          2,
	ClassMinivan:      3,
	ClassRigidLorries: 4,
	ClassTruckOrBus:   5,
	ClassUnknown:      0,
}

// Code returns the numeric class id used by the upstream feed.
func (vc VehicleClass) Code() int {
	return vehicleClassCodes[vc]
}

// Reliable reports whether measurements for this class are considered
// trustworthy. Motorcycles and unknown vehicles are not.
func (vc VehicleClass) Reliable() bool {
	switch vc {
	case ClassMotorcycle, ClassUnknown:
		return false
	default:
		return true
	}
}

// VehicleClassFromCode maps an upstream class id to a VehicleClass,
// falling back to ClassUnknown for codes outside the known set.
func VehicleClassFromCode(code int) VehicleClass {
	for _, vc := range VehicleClasses {
		if vc.Code() == code {
			return vc
		}
	}
	return ClassUnknown
}

// UnmarshalJSON normalizes unknown class names to ClassUnknown, so a feed
// extension never breaks deserialization.
func (vc *VehicleClass) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("vehicle class: %w", err)
	}

	parsed := VehicleClass(name)
	if _, known := vehicleClassCodes[parsed]; !known {
		parsed = ClassUnknown
	}
	*vc = parsed
	return nil
}
