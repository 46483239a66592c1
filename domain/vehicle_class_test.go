package domain

import (
	"encoding/json"
	"testing"
)

func TestVehicleClassCodesAndReliability(t *testing.T) {
	cases := []struct {
		class    VehicleClass
		code     int
		reliable bool
	}{
		{ClassMotorcycle, 1, false},
		{ClassCar, 2, true},
		{ClassMinivan, 3, true},
		{ClassRigidLorries, 4, true},
		{ClassTruckOrBus, 5, true},
		{ClassUnknown, 0, false},
	}

	for _, tc := range cases {
		t.Run(string(tc.class), func(t *testing.T) {
			if got := tc.class.Code(); got != tc.code {
				t.Errorf("Code() = %d, want %d", got, tc.code)
			}
			if got := tc.class.Reliable(); got != tc.reliable {
				t.Errorf("Reliable() = %v, want %v", got, tc.reliable)
			}
		})
	}
}

func TestVehicleClassFromCode(t *testing.T) {
	if got := VehicleClassFromCode(2); got != ClassCar {
		t.Errorf("VehicleClassFromCode(2) = %s, want %s", got, ClassCar)
	}
	if got := VehicleClassFromCode(99); got != ClassUnknown {
		t.Errorf("VehicleClassFromCode(99) = %s, want %s", got, ClassUnknown)
	}
}

func TestVehicleClassUnmarshalNormalizesUnknownNames(t *testing.T) {
	var vc VehicleClass
	if err := json.Unmarshal([]byte(`"HOVERCRAFT"`), &vc); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if vc != ClassUnknown {
		t.Errorf("unknown class name parsed to %s, want %s", vc, ClassUnknown)
	}

	if err := json.Unmarshal([]byte(`"CAR"`), &vc); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if vc != ClassCar {
		t.Errorf("parsed to %s, want %s", vc, ClassCar)
	}
}
