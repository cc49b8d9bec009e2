package dto

import (
	"slotkeeper/internal/domains/settings/model"
	gDto "slotkeeper/shared/dto"
)

type UpdateSettingsRequest struct {
	Hours        map[string][][]string `json:"hours"         validate:"required"`
	Breaks       map[string][][]string `json:"breaks"`
	SlotInterval int                   `json:"slot_interval" validate:"min=0,max=1440"`
	BufferBefore int                   `json:"buffer_before" validate:"min=0,max=1440"`
	BufferAfter  int                   `json:"buffer_after"  validate:"min=0,max=1440"`
	DaysOff      []string              `json:"days_off"      validate:"dive,datetime=2006-01-02"`
}

type SettingsResponse struct {
	ResourceID   string                 `json:"resource_id"`
	Hours        map[string][][2]string `json:"hours"`
	Breaks       map[string][][2]string `json:"breaks"`
	SlotInterval int                    `json:"slot_interval"`
	BufferBefore int                    `json:"buffer_before"`
	BufferAfter  int                    `json:"buffer_after"`
	DaysOff      []string               `json:"days_off"`
	// Warnings lists dropped ranges and breaks outside business hours. They
	// never block a save.
	Warnings []string `json:"warnings,omitempty"`
	gDto.Metadata
}

func (r *SettingsResponse) FromModel(settings model.Settings) {
	r.ResourceID = settings.ResourceID
	r.Hours = settings.Document.Hours
	r.Breaks = settings.Document.Breaks
	r.SlotInterval = settings.Document.SlotInterval
	r.BufferBefore = settings.Document.BufferBefore
	r.BufferAfter = settings.Document.BufferAfter
	r.DaysOff = settings.Document.DaysOff
	r.Metadata.FromModel(settings.Metadata)
}
