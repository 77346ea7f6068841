package fakeapi

import (
	"fmt"

	"github.com/me/audictl/pkg/model"
)

// AddUser creates a verified account and returns it.
func (s *Server) AddUser(username, email, password string, role model.Role) (model.User, error) {
	u, err := s.data.createAccount(username, email, password, role, true)
	if err != nil {
		return model.User{}, fmt.Errorf("add user %s: %w", email, err)
	}
	return u, nil
}

// AddAuditorium stores a and returns it with its assigned ID.
func (s *Server) AddAuditorium(a model.Auditorium) model.Auditorium {
	return s.data.addAuditorium(a)
}

// PendingOTP returns the code most recently issued to email, if it has not
// been consumed.
func (s *Server) PendingOTP(email string) (string, bool) {
	return s.data.pendingOTP(email)
}

// Seed creates an administrator and a few auditoriums for local use.
func (s *Server) Seed(adminEmail, adminPassword string) error {
	if _, err := s.AddUser("admin", adminEmail, adminPassword, model.RoleAdmin); err != nil {
		return err
	}
	for _, a := range seedAuditoriums {
		s.AddAuditorium(a)
	}
	s.logger.Info("seeded", "admin", adminEmail, "auditoriums", len(seedAuditoriums))
	return nil
}

var seedAuditoriums = []model.Auditorium{
	{
		Name:     "Main Auditorium",
		Location: "Block A, Ground Floor",
		Capacity: 500,
		Amenities: model.Amenities{
			HasProjector: true, HasSoundSystem: true, HasAirConditioning: true,
			HasStageLighting: true, HasWifi: true, HasWheelchairAccess: true,
			HasGreenRoom: true, HasParking: true, HasPodium: true, HasVideoRecording: true,
		},
		Active: true,
	},
	{
		Name:     "Seminar Hall",
		Location: "Block B, First Floor",
		Capacity: 120,
		Amenities: model.Amenities{
			HasProjector: true, HasSoundSystem: true, HasAirConditioning: true,
			HasWifi: true, HasPodium: true,
		},
		Active: true,
	},
	{
		Name:     "Open Air Theatre",
		Location: "Central Lawn",
		Capacity: 800,
		Amenities: model.Amenities{
			HasSoundSystem: true, HasStageLighting: true, HasParking: true,
		},
		Active: false,
	},
}
