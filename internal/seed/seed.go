// Package seed loads YAML fixtures of identities and their records and applies
// them through the same services the HTTP API uses.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "canvass/internal/errors"
	"canvass/internal/handler"
	"canvass/internal/service"
	"canvass/internal/validation"
)

// Fixture is the root of a seed file.
type Fixture struct {
	Users []User `yaml:"users"`
}

// User is an identity to register, with the records it owns.
type User struct {
	Email     string   `yaml:"email"`
	Password  string   `yaml:"password"`
	FirstName string   `yaml:"first_name"`
	LastName  string   `yaml:"last_name"`
	Records   []Record `yaml:"records,omitempty"`
}

// Record is a record owned by the enclosing user.
type Record struct {
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Email     string `yaml:"email,omitempty"`
	Notes     string `yaml:"notes"`
}

// Result counts what Apply did.
type Result struct {
	UsersCreated   int `json:"users_created"`
	UsersSkipped   int `json:"users_skipped"`
	RecordsCreated int `json:"records_created"`
}

// Load reads and parses a fixture file.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return Parse(data)
}

// Parse decodes a fixture and validates every user and record with the same
// rules the HTTP API applies, so a bad fixture is rejected before any write.
// Names and notes are trimmed first, as the services would.
func Parse(data []byte) (*Fixture, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f Fixture
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}

	v := validation.New()
	seen := make(map[string]bool, len(f.Users))
	for i := range f.Users {
		u := &f.Users[i]
		u.FirstName, u.LastName = strings.TrimSpace(u.FirstName), strings.TrimSpace(u.LastName)
		if err := v.Validate(&handler.RegisterRequest{
			Email:     u.Email,
			Password:  u.Password,
			FirstName: u.FirstName,
			LastName:  u.LastName,
		}); err != nil {
			return nil, fmt.Errorf("users[%d]: %w", i, err)
		}
		if seen[u.Email] {
			return nil, fmt.Errorf("users[%d]: duplicate email %q", i, u.Email)
		}
		seen[u.Email] = true

		for j := range u.Records {
			r := &u.Records[j]
			r.FirstName, r.LastName = strings.TrimSpace(r.FirstName), strings.TrimSpace(r.LastName)
			r.Email, r.Notes = strings.TrimSpace(r.Email), strings.TrimSpace(r.Notes)
			req := handler.CreateRecordRequest{FirstName: r.FirstName, LastName: r.LastName, Notes: r.Notes}
			if r.Email != "" {
				req.Email = &r.Email
			}
			if err := v.Validate(&req); err != nil {
				return nil, fmt.Errorf("users[%d] (%s) records[%d]: %w", i, u.Email, j, err)
			}
		}
	}
	return &f, nil
}

// Apply registers every user and creates their records. Users whose email is
// already registered are skipped along with their records, so applying the
// same fixture twice is harmless.
func Apply(ctx context.Context, f *Fixture, auth service.AuthService, records service.RecordService) (Result, error) {
	var res Result
	for _, u := range f.Users {
		reg, err := auth.Register(ctx, service.RegisterInput{
			Email:     u.Email,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Password:  u.Password,
		})
		if errors.Is(err, apperrors.ErrDuplicateEmail) {
			res.UsersSkipped++
			continue
		}
		if err != nil {
			return res, fmt.Errorf("register %s: %w", u.Email, err)
		}
		res.UsersCreated++

		for _, r := range u.Records {
			in := service.CreateRecordInput{FirstName: r.FirstName, LastName: r.LastName, Notes: r.Notes}
			if r.Email != "" {
				email := r.Email
				in.Email = &email
			}
			if _, err := records.Create(ctx, reg.Identity.ID, in); err != nil {
				return res, fmt.Errorf("create record for %s: %w", u.Email, err)
			}
			res.RecordsCreated++
		}
	}
	return res, nil
}
