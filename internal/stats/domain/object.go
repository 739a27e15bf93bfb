package domain

import "strings"

// ObjectType is the XO object type of a selectable object.
type ObjectType string

const (
	ObjectHost ObjectType = "host"
	ObjectVM   ObjectType = "VM"
)

// PowerStateRunning is the only power state eligible for selection.
const PowerStateRunning = "Running"

// Object is a host or VM as reported by the XO object source.
type Object struct {
	ID         string     `json:"id"`
	NameLabel  string     `json:"name_label"`
	Type       ObjectType `json:"type"`
	PowerState string     `json:"power_state"`
}

// Label returns the display name, falling back to the ID.
func (o Object) Label() string {
	if o.NameLabel != "" {
		return o.NameLabel
	}
	return o.ID
}

// Running reports whether the object is powered on.
func (o Object) Running() bool {
	return o.PowerState == PowerStateRunning
}

// ParseObjectType accepts "host" and "vm" in any case.
func ParseObjectType(s string) (ObjectType, bool) {
	switch {
	case strings.EqualFold(s, string(ObjectHost)):
		return ObjectHost, true
	case strings.EqualFold(s, string(ObjectVM)):
		return ObjectVM, true
	default:
		return "", false
	}
}
