// Package seed loads rooms and persons from a YAML fixture file.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"roombook/backend/internal/domain"
)

type Fixture struct {
	Rooms   []RoomFixture   `yaml:"rooms" validate:"dive"`
	Persons []PersonFixture `yaml:"persons" validate:"dive"`
}

type RoomFixture struct {
	Name     string `yaml:"name" validate:"required,roomname"`
	Capacity int    `yaml:"capacity" validate:"gt=0"`
}

type PersonFixture struct {
	FullName string `yaml:"full_name" validate:"required,max=255"`
	Age      int    `yaml:"age" validate:"gte=0,lte=150"`
}

// Target is the subset of the store the loader writes through.
type Target interface {
	RoomNameExists(ctx context.Context, name string) (bool, error)
	CreateRoom(ctx context.Context, room domain.Room) (domain.Room, error)
	CreatePerson(ctx context.Context, p domain.Person) (domain.Person, error)
}

type Result struct {
	RoomsCreated   int
	RoomsSkipped   int
	PersonsCreated int
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("roomname", func(fl validator.FieldLevel) bool {
		return domain.ValidRoomName(fl.Field().String())
	})
	return v
}

func Load(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("read fixture: %w", err)
	}
	return Parse(data)
}

// Parse decodes a fixture, rejecting unknown keys, and validates every entry.
func Parse(data []byte) (Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return Fixture{}, fmt.Errorf("decode fixture: %w", err)
	}

	for i := range f.Rooms {
		f.Rooms[i].Name = strings.TrimSpace(f.Rooms[i].Name)
	}
	for i := range f.Persons {
		f.Persons[i].FullName = strings.TrimSpace(f.Persons[i].FullName)
	}

	if err := validate.Struct(f); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) && len(vErrs) > 0 {
			return Fixture{}, fmt.Errorf("invalid fixture: %s failed %q", vErrs[0].Namespace(), vErrs[0].Tag())
		}
		return Fixture{}, fmt.Errorf("invalid fixture: %w", err)
	}
	return f, nil
}

// Apply creates the fixture's rooms and persons. Rooms whose name already
// exists are left untouched, so re-running a fixture is harmless for rooms.
func Apply(ctx context.Context, t Target, f Fixture, log *slog.Logger) (Result, error) {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "seed"))

	var res Result
	for _, rf := range f.Rooms {
		exists, err := t.RoomNameExists(ctx, rf.Name)
		if err != nil {
			return res, fmt.Errorf("check room %q: %w", rf.Name, err)
		}
		if exists {
			log.Info("room exists; skipping", slog.String("name", rf.Name))
			res.RoomsSkipped++
			continue
		}
		room, err := t.CreateRoom(ctx, domain.Room{
			Name:     rf.Name,
			Capacity: rf.Capacity,
			Status:   domain.RoomAvailable,
		})
		if err != nil {
			return res, fmt.Errorf("create room %q: %w", rf.Name, err)
		}
		log.Info("room created", slog.Int64("room_id", room.ID), slog.String("name", room.Name))
		res.RoomsCreated++
	}

	for _, pf := range f.Persons {
		p, err := t.CreatePerson(ctx, domain.Person{FullName: pf.FullName, Age: pf.Age})
		if err != nil {
			return res, fmt.Errorf("create person %q: %w", pf.FullName, err)
		}
		log.Debug("person created", slog.Int64("person_id", p.ID))
		res.PersonsCreated++
	}
	return res, nil
}
