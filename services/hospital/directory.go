package hospital

import "ambulink/models"

var (
	generalServices  = []string{"Emergency", "General Medicine", "Surgery"}
	traumaServices   = []string{"Emergency", "Trauma", "ICU", "Surgery"}
	privateSpecialty = []string{"Emergency", "Cardiology", "Oncology", "Neurology"}
)

// DefaultDirectory returns the hospitals loaded by the seed command.
func DefaultDirectory() []models.Hospital {
	return []models.Hospital{
		{ID: "kandy_general", Name: "Kandy General Hospital", Address: "Kandy General Hospital, Kandy, Sri Lanka",
			Phone: "+94 81 222 2261", Type: models.HospitalPublic,
			Services:    []string{"Emergency", "Cardiology", "Neurology", "Orthopedics"},
			Coordinates: models.Coordinates{Lat: 7.2906, Lng: 80.6337}},
		{ID: "teaching_hospital_kandy", Name: "Teaching Hospital Kandy", Address: "Teaching Hospital Kandy, Peradeniya Rd, Kandy, Sri Lanka",
			Phone: "+94 81 223 8250", Type: models.HospitalPublic, Services: traumaServices,
			Coordinates: models.Coordinates{Lat: 7.2973, Lng: 80.6350}},
		{ID: "asiri_kandy", Name: "Asiri Medical Hospital Kandy", Address: "Asiri Medical Hospital, Kandy, Sri Lanka",
			Phone: "+94 81 223 3500", Type: models.HospitalPrivate, Services: privateSpecialty,
			Coordinates: models.Coordinates{Lat: 7.2869, Lng: 80.6304}},
		{ID: "colombo_national", Name: "National Hospital of Sri Lanka", Address: "National Hospital of Sri Lanka, Colombo, Sri Lanka",
			Phone: "+94 11 269 1111", Type: models.HospitalPublic,
			Services:    []string{"Emergency", "Trauma", "ICU", "All Specialties"},
			Coordinates: models.Coordinates{Lat: 6.9271, Lng: 79.8612}},
		{ID: "asiri_colombo", Name: "Asiri Medical Hospital Colombo", Address: "Asiri Medical Hospital, Colombo, Sri Lanka",
			Phone: "+94 11 446 6100", Type: models.HospitalPrivate, Services: privateSpecialty,
			Coordinates: models.Coordinates{Lat: 6.9044, Lng: 79.8606}},
		{ID: "gampaha_general", Name: "Gampaha General Hospital", Address: "Gampaha General Hospital, Gampaha, Sri Lanka",
			Phone: "+94 33 222 2261", Type: models.HospitalPublic, Services: generalServices,
			Coordinates: models.Coordinates{Lat: 7.0873, Lng: 80.0142}},
		{ID: "galle_general", Name: "Karapitiya Teaching Hospital", Address: "Karapitiya Teaching Hospital, Galle, Sri Lanka",
			Phone: "+94 91 223 2261", Type: models.HospitalPublic, Services: traumaServices,
			Coordinates: models.Coordinates{Lat: 6.0535, Lng: 80.2210}},
		{ID: "jaffna_general", Name: "Jaffna Teaching Hospital", Address: "Jaffna Teaching Hospital, Jaffna, Sri Lanka",
			Phone: "+94 21 222 2261", Type: models.HospitalPublic, Services: generalServices,
			Coordinates: models.Coordinates{Lat: 9.6615, Lng: 80.0255}},
		{ID: "anuradhapura_general", Name: "Anuradhapura General Hospital", Address: "Anuradhapura General Hospital, Anuradhapura, Sri Lanka",
			Phone: "+94 25 222 2261", Type: models.HospitalPublic, Services: generalServices,
			Coordinates: models.Coordinates{Lat: 8.3114, Lng: 80.4037}},
		{ID: "kurunegala_general", Name: "Kurunegala General Hospital", Address: "Kurunegala General Hospital, Kurunegala, Sri Lanka",
			Phone: "+94 37 222 2261", Type: models.HospitalPublic, Services: generalServices,
			Coordinates: models.Coordinates{Lat: 7.4818, Lng: 80.3609}},
		{ID: "ratnapura_general", Name: "Ratnapura General Hospital", Address: "Ratnapura General Hospital, Ratnapura, Sri Lanka",
			Phone: "+94 45 222 2261", Type: models.HospitalPublic, Services: generalServices,
			Coordinates: models.Coordinates{Lat: 6.6828, Lng: 80.3992}},
	}
}
