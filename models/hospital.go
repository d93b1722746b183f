package models

// HospitalType distinguishes public and private facilities.
type HospitalType string

const (
	HospitalPublic  HospitalType = "public"
	HospitalPrivate HospitalType = "private"
)

// Hospital is an entry of the destination directory.
type Hospital struct {
	ID          string       `bson:"id" json:"id"`
	Name        string       `bson:"name" json:"name"`
	Address     string       `bson:"address" json:"address"`
	Phone       string       `bson:"phone,omitempty" json:"phone,omitempty"`
	Type        HospitalType `bson:"type" json:"type"`
	Services    []string     `bson:"services,omitempty" json:"services,omitempty"`
	Location    GeoPoint     `bson:"location" json:"-"`
	Coordinates Coordinates  `bson:"coordinates" json:"coordinates"`

	// Populated by geo queries only.
	DistanceKm float64 `bson:"distanceKm,omitempty" json:"distanceKm,omitempty"`
}

// HospitalQuery filters directory listings.
type HospitalQuery struct {
	Near     *Coordinates
	RadiusKm float64
	Type     HospitalType
}
