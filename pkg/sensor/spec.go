/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package sensor maps update check results onto HomeKit-style sensor readings.
package sensor

import "strings"

const (
	TypeContact        = "contact"
	TypeOccupancy      = "occupancy"
	TypeSmoke          = "smoke"
	TypeLeak           = "leak"
	TypeLight          = "light"
	TypeHumidity       = "humidity"
	TypeCarbonMonoxide = "carbon-monoxide"
	TypeCarbonDioxide  = "carbon-dioxide"
	TypeAirQuality     = "air-quality"
	TypeMotion         = "motion"
)

// Spec describes how "an update is available" is expressed for one sensor type.
type Spec struct {
	Type               string `json:"type"`
	ServiceKind        string `json:"service"`
	CharacteristicKind string `json:"characteristic"`
	TrippedValue       any    `json:"tripped"`
	UntrippedValue     any    `json:"untripped"`
}

var specs = map[string]Spec{
	TypeContact: {
		Type: TypeContact, ServiceKind: "ContactSensor", CharacteristicKind: "ContactSensorState",
		TrippedValue: 1, UntrippedValue: 0,
	},
	TypeOccupancy: {
		Type: TypeOccupancy, ServiceKind: "OccupancySensor", CharacteristicKind: "OccupancyDetected",
		TrippedValue: 1, UntrippedValue: 0,
	},
	TypeSmoke: {
		Type: TypeSmoke, ServiceKind: "SmokeSensor", CharacteristicKind: "SmokeDetected",
		TrippedValue: 1, UntrippedValue: 0,
	},
	TypeLeak: {
		Type: TypeLeak, ServiceKind: "LeakSensor", CharacteristicKind: "LeakDetected",
		TrippedValue: 1, UntrippedValue: 0,
	},
	// HomeKit rejects a light level of exactly zero.
	TypeLight: {
		Type: TypeLight, ServiceKind: "LightSensor", CharacteristicKind: "CurrentAmbientLightLevel",
		TrippedValue: 100000.0, UntrippedValue: 0.0001,
	},
	TypeHumidity: {
		Type: TypeHumidity, ServiceKind: "HumiditySensor", CharacteristicKind: "CurrentRelativeHumidity",
		TrippedValue: 100, UntrippedValue: 0,
	},
	TypeCarbonMonoxide: {
		Type: TypeCarbonMonoxide, ServiceKind: "CarbonMonoxideSensor", CharacteristicKind: "CarbonMonoxideDetected",
		TrippedValue: 1, UntrippedValue: 0,
	},
	TypeCarbonDioxide: {
		Type: TypeCarbonDioxide, ServiceKind: "CarbonDioxideSensor", CharacteristicKind: "CarbonDioxideDetected",
		TrippedValue: 1, UntrippedValue: 0,
	},
	// 5 is POOR, 1 is EXCELLENT.
	TypeAirQuality: {
		Type: TypeAirQuality, ServiceKind: "AirQualitySensor", CharacteristicKind: "AirQuality",
		TrippedValue: 5, UntrippedValue: 1,
	},
	TypeMotion: {
		Type: TypeMotion, ServiceKind: "MotionSensor", CharacteristicKind: "MotionDetected",
		TrippedValue: true, UntrippedValue: false,
	},
}

var aliases = map[string]string{
	"monoxide":       TypeCarbonMonoxide,
	"carbonmonoxide": TypeCarbonMonoxide,
	"dioxide":        TypeCarbonDioxide,
	"carbondioxide":  TypeCarbonDioxide,
	"air":            TypeAirQuality,
	"airquality":     TypeAirQuality,
}

// Resolve returns the spec for a configured sensor type. Matching is
// case-insensitive; unknown or empty types resolve to motion.
func Resolve(sensorType string) Spec {
	key := strings.ToLower(strings.TrimSpace(sensorType))

	if alias, ok := aliases[key]; ok {
		key = alias
	}

	if spec, ok := specs[key]; ok {
		return spec
	}

	return specs[TypeMotion]
}

// StateFor maps an outdated count to the value the sensor should show.
func (s Spec) StateFor(outdated int) any {
	if outdated > 0 {
		return s.TrippedValue
	}

	return s.UntrippedValue
}

// Types lists the canonical sensor type names.
func Types() []string {
	return []string{
		TypeContact, TypeOccupancy, TypeSmoke, TypeLeak, TypeLight, TypeHumidity,
		TypeCarbonMonoxide, TypeCarbonDioxide, TypeAirQuality, TypeMotion,
	}
}
