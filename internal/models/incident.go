package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type IncidentStatus string

const (
	StatusActive   IncidentStatus = "ACTIVE"
	StatusResolved IncidentStatus = "RESOLVED"
)

// Profile - данные профиля пользователя, подтягиваемые джойном
type Profile struct {
	FullName    *string `json:"full_name"`
	PhoneNumber *string `json:"phone_number"`
	AvatarURL   *string `json:"avatar_url"`
}

// Incident - одно SOS-событие от создания до закрытия.
// Телеметрия (координаты, курс, скорость, батарея) независимо может отсутствовать.
type Incident struct {
	ID              uuid.UUID      `json:"id"`
	UserID          string         `json:"user_id"`
	Status          IncidentStatus `json:"status"`
	Latitude        *float64       `json:"latitude"`
	Longitude       *float64       `json:"longitude"`
	Heading         *float64       `json:"heading"`
	Speed           *float64       `json:"speed"`
	Battery         *float64       `json:"battery"`
	AddressSnapshot *string        `json:"address_snapshot"`
	StartedAt       time.Time      `json:"started_at"`
	ResolvedAt      *time.Time     `json:"resolved_at"`
	LastUpdated     time.Time      `json:"last_updated"`
	UserName        *string        `json:"user_name"`
	UserEmail       *string        `json:"user_email"`
	Profile         *Profile       `json:"profiles,omitempty"`
}

func (i *Incident) IsActive() bool {
	return i.Status == StatusActive
}

// DisplayName возвращает имя из профиля, затем денормализованное имя, иначе "Unknown"
func (i *Incident) DisplayName() string {
	if i.Profile != nil && i.Profile.FullName != nil && *i.Profile.FullName != "" {
		return *i.Profile.FullName
	}
	if i.UserName != nil && *i.UserName != "" {
		return *i.UserName
	}
	return "Unknown"
}

// DisplayContact возвращает телефон из профиля, затем email, иначе "N/A"
func (i *Incident) DisplayContact() string {
	if i.Profile != nil && i.Profile.PhoneNumber != nil && *i.Profile.PhoneNumber != "" {
		return *i.Profile.PhoneNumber
	}
	if i.UserEmail != nil && *i.UserEmail != "" {
		return *i.UserEmail
	}
	return "N/A"
}

// BatteryPercent переводит долю заряда в проценты. Отрицательное значение означает "неизвестно".
func (i *Incident) BatteryPercent() *int {
	if i.Battery == nil || *i.Battery < 0 {
		return nil
	}
	pct := int(math.Round(*i.Battery * 100))
	return &pct
}

// Clone возвращает копию, не разделяющую указатели с оригиналом
func (i *Incident) Clone() *Incident {
	if i == nil {
		return nil
	}
	c := *i
	c.Latitude = cloneFloat(i.Latitude)
	c.Longitude = cloneFloat(i.Longitude)
	c.Heading = cloneFloat(i.Heading)
	c.Speed = cloneFloat(i.Speed)
	c.Battery = cloneFloat(i.Battery)
	c.AddressSnapshot = cloneString(i.AddressSnapshot)
	c.UserName = cloneString(i.UserName)
	c.UserEmail = cloneString(i.UserEmail)
	if i.ResolvedAt != nil {
		t := *i.ResolvedAt
		c.ResolvedAt = &t
	}
	if i.Profile != nil {
		c.Profile = &Profile{
			FullName:    cloneString(i.Profile.FullName),
			PhoneNumber: cloneString(i.Profile.PhoneNumber),
			AvatarURL:   cloneString(i.Profile.AvatarURL),
		}
	}
	return &c
}

// IncidentPatch - частичное обновление из UPDATE-уведомления, nil означает "не изменилось"
type IncidentPatch struct {
	Status          *IncidentStatus `json:"status,omitempty"`
	Latitude        *float64        `json:"latitude,omitempty"`
	Longitude       *float64        `json:"longitude,omitempty"`
	Heading         *float64        `json:"heading,omitempty"`
	Speed           *float64        `json:"speed,omitempty"`
	Battery         *float64        `json:"battery,omitempty"`
	AddressSnapshot *string         `json:"address_snapshot,omitempty"`
	ResolvedAt      *time.Time      `json:"resolved_at,omitempty"`
	LastUpdated     *time.Time      `json:"last_updated,omitempty"`
	UserName        *string         `json:"user_name,omitempty"`
	UserEmail       *string         `json:"user_email,omitempty"`
}

// Apply вливает патч в инцидент. ID и started_at не меняются никогда,
// RESOLVED терминален, resolved_at выставляется ровно один раз.
func (p *IncidentPatch) Apply(i *Incident) {
	if p == nil || i == nil {
		return
	}
	if p.Status != nil && i.Status != StatusResolved {
		i.Status = *p.Status
	}
	if p.ResolvedAt != nil && i.ResolvedAt == nil && i.Status == StatusResolved {
		t := *p.ResolvedAt
		i.ResolvedAt = &t
	}
	if i.Status == StatusResolved && i.ResolvedAt == nil {
		// UPDATE может нести только status: берём время изменения
		t := i.LastUpdated
		if p.LastUpdated != nil {
			t = *p.LastUpdated
		}
		i.ResolvedAt = &t
	}
	if p.Latitude != nil {
		i.Latitude = cloneFloat(p.Latitude)
	}
	if p.Longitude != nil {
		i.Longitude = cloneFloat(p.Longitude)
	}
	if p.Heading != nil {
		i.Heading = cloneFloat(p.Heading)
	}
	if p.Speed != nil {
		i.Speed = cloneFloat(p.Speed)
	}
	if p.Battery != nil {
		i.Battery = cloneFloat(p.Battery)
	}
	if p.AddressSnapshot != nil {
		i.AddressSnapshot = cloneString(p.AddressSnapshot)
	}
	if p.UserName != nil {
		i.UserName = cloneString(p.UserName)
	}
	if p.UserEmail != nil {
		i.UserEmail = cloneString(p.UserEmail)
	}
	if p.LastUpdated != nil && p.LastUpdated.After(i.LastUpdated) {
		i.LastUpdated = *p.LastUpdated
	}
}

// PatchFromIncident строит полный патч из строки (UPDATE приходит строкой целиком у некоторых транспортов)
func PatchFromIncident(i *Incident) *IncidentPatch {
	if i == nil {
		return nil
	}
	p := &IncidentPatch{
		Latitude:        cloneFloat(i.Latitude),
		Longitude:       cloneFloat(i.Longitude),
		Heading:         cloneFloat(i.Heading),
		Speed:           cloneFloat(i.Speed),
		Battery:         cloneFloat(i.Battery),
		AddressSnapshot: cloneString(i.AddressSnapshot),
		UserName:        cloneString(i.UserName),
		UserEmail:       cloneString(i.UserEmail),
	}
	if i.Status != "" {
		s := i.Status
		p.Status = &s
	}
	if i.ResolvedAt != nil {
		t := *i.ResolvedAt
		p.ResolvedAt = &t
	}
	if !i.LastUpdated.IsZero() {
		t := i.LastUpdated
		p.LastUpdated = &t
	}
	return p
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
