package reservation

import (
	"errors"
	"strings"
	"unicode/utf8"
)

var (
	ErrInvalidName      = errors.New("name must not be empty")
	ErrNameTooLong      = errors.New("name must be at most 255 characters")
	ErrInvalidAddress   = errors.New("address must not be empty")
	ErrAddressTooLong   = errors.New("address must be at most 500 characters")
	ErrInvalidLatitude  = errors.New("latitude must be between -90 and 90")
	ErrInvalidLongitude = errors.New("longitude must be between -180 and 180")
)

const (
	maxNameLength    = 255
	maxAddressLength = 500
)

type Name struct {
	value string
}

func NewName(s string) (Name, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Name{}, ErrInvalidName
	}
	if utf8.RuneCountInString(s) > maxNameLength {
		return Name{}, ErrNameTooLong
	}
	return Name{value: s}, nil
}

func (n Name) Value() string {
	return n.value
}

type Address struct {
	value string
}

func NewAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Address{}, ErrInvalidAddress
	}
	if utf8.RuneCountInString(s) > maxAddressLength {
		return Address{}, ErrAddressTooLong
	}
	return Address{value: s}, nil
}

func (a Address) Value() string {
	return a.value
}

type Coordinates struct {
	lat float64
	lng float64
}

func NewCoordinates(lat, lng float64) (Coordinates, error) {
	if lat < -90 || lat > 90 {
		return Coordinates{}, ErrInvalidLatitude
	}
	if lng < -180 || lng > 180 {
		return Coordinates{}, ErrInvalidLongitude
	}
	return Coordinates{lat: lat, lng: lng}, nil
}

func (c Coordinates) Lat() float64 { return c.lat }
func (c Coordinates) Lng() float64 { return c.lng }
