package model

import "strings"

// Amenities are the fixed set of facility flags an auditorium advertises.
// The JSON keys are flattened into the auditorium object.
type Amenities struct {
	HasProjector        bool `json:"hasProjector"`
	HasSoundSystem      bool `json:"hasSoundSystem"`
	HasAirConditioning  bool `json:"hasAirConditioning"`
	HasStageLighting    bool `json:"hasStageLighting"`
	HasWifi             bool `json:"hasWifi"`
	HasWheelchairAccess bool `json:"hasWheelchairAccess"`
	HasGreenRoom        bool `json:"hasGreenRoom"`
	HasParking          bool `json:"hasParking"`
	HasPodium           bool `json:"hasPodium"`
	HasVideoRecording   bool `json:"hasVideoRecording"`
}

// Amenity is one labelled flag.
type Amenity struct {
	Key       string
	Label     string
	Available bool
}

// List returns every amenity in display order.
func (a Amenities) List() []Amenity {
	return []Amenity{
		{"projector", "Projector", a.HasProjector},
		{"sound-system", "Sound System", a.HasSoundSystem},
		{"air-conditioning", "Air Conditioning", a.HasAirConditioning},
		{"stage-lighting", "Stage Lighting", a.HasStageLighting},
		{"wifi", "WiFi", a.HasWifi},
		{"wheelchair-access", "Wheelchair Access", a.HasWheelchairAccess},
		{"green-room", "Green Room", a.HasGreenRoom},
		{"parking", "Parking", a.HasParking},
		{"podium", "Podium", a.HasPodium},
		{"video-recording", "Video Recording", a.HasVideoRecording},
	}
}

// AmenityKeys lists the keys accepted by Set.
func AmenityKeys() []string {
	var keys []string
	for _, am := range (Amenities{}).List() {
		keys = append(keys, am.Key)
	}
	return keys
}

// Set turns the named amenity on or off. It reports false for an unknown key.
func (a *Amenities) Set(key string, on bool) bool {
	switch strings.ToLower(key) {
	case "projector":
		a.HasProjector = on
	case "sound-system":
		a.HasSoundSystem = on
	case "air-conditioning":
		a.HasAirConditioning = on
	case "stage-lighting":
		a.HasStageLighting = on
	case "wifi":
		a.HasWifi = on
	case "wheelchair-access":
		a.HasWheelchairAccess = on
	case "green-room":
		a.HasGreenRoom = on
	case "parking":
		a.HasParking = on
	case "podium":
		a.HasPodium = on
	case "video-recording":
		a.HasVideoRecording = on
	default:
		return false
	}
	return true
}

// Auditorium is a bookable venue.
type Auditorium struct {
	ID       ID     `json:"id,omitempty"`
	Name     string `json:"name" validate:"required"`
	Location string `json:"location" validate:"required"`
	Capacity int    `json:"capacity" validate:"gt=0"`
	Amenities
	Active bool   `json:"active"`
	ImgURL string `json:"imgUrl,omitempty"`
}

// Matches reports whether the name or location contains q, ignoring case.
func (a *Auditorium) Matches(q string) bool {
	q = strings.ToLower(q)
	return strings.Contains(strings.ToLower(a.Name), q) ||
		strings.Contains(strings.ToLower(a.Location), q)
}

// SearchAuditoriums returns the auditoriums matching q, preserving order.
func SearchAuditoriums(list []Auditorium, q string) []Auditorium {
	if q == "" {
		return list
	}
	out := make([]Auditorium, 0, len(list))
	for i := range list {
		if list[i].Matches(q) {
			out = append(out, list[i])
		}
	}
	return out
}
