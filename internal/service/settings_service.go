package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type UpiSettingsResponse struct {
	UpiID        string `json:"upi_id"`
	BusinessName string `json:"business_name"`
}

type UpdateUpiSettingsRequest struct {
	UpiID        string `json:"upi_id" binding:"required"`
	BusinessName string `json:"business_name"`
}

// --- Interface ---

// SettingsService resolves shop-level settings with configured fallbacks. The
// UPI lookup is best-effort: a missing row or a failed read falls back to the
// injected defaults so bill preview is never blocked on settings.
type SettingsService interface {
	GetUpiSettings(ctx context.Context) UpiSettingsResponse
	UpdateUpiSettings(ctx context.Context, req UpdateUpiSettingsRequest, actorID string) (UpiSettingsResponse, error)
}

// SettingsDefaults carries the configured fallback values, injected at wiring
// time rather than read from package state so the service stays testable.
type SettingsDefaults struct {
	UpiID        string
	BusinessName string
}

type settingsService struct {
	settingsRepo repository.SettingsRepository
	auditRepo    repository.AuditRepository
	defaults     SettingsDefaults
}

func NewSettingsService(settingsRepo repository.SettingsRepository, auditRepo repository.AuditRepository, defaults SettingsDefaults) SettingsService {
	return &settingsService{settingsRepo: settingsRepo, auditRepo: auditRepo, defaults: defaults}
}

// --- Implementation ---

func (s *settingsService) GetUpiSettings(ctx context.Context) UpiSettingsResponse {
	resp := UpiSettingsResponse{
		UpiID:        s.defaults.UpiID,
		BusinessName: s.defaults.BusinessName,
	}

	upiID, err := s.settingsRepo.Get(ctx, model.SettingUpiID)
	if err != nil {
		log.Printf("settings: falling back to configured UPI id: %v", err)
	} else if upiID != "" {
		resp.UpiID = upiID
	}

	if name, err := s.settingsRepo.Get(ctx, model.SettingBusinessName); err == nil && name != "" {
		resp.BusinessName = name
	}

	return resp
}

func (s *settingsService) UpdateUpiSettings(ctx context.Context, req UpdateUpiSettingsRequest, actorID string) (UpiSettingsResponse, error) {
	if err := s.settingsRepo.Set(ctx, model.SettingUpiID, req.UpiID); err != nil {
		return UpiSettingsResponse{}, fmt.Errorf("failed to store upi id: %w", err)
	}
	if req.BusinessName != "" {
		if err := s.settingsRepo.Set(ctx, model.SettingBusinessName, req.BusinessName); err != nil {
			return UpiSettingsResponse{}, fmt.Errorf("failed to store business name: %w", err)
		}
	}

	entry := model.AuditLog{
		Action:     model.ActionUpdateSettings,
		EntityID:   model.SettingUpiID,
		EntityName: req.UpiID,
	}
	if actorID != "" {
		if userID, err := uuid.Parse(actorID); err == nil {
			entry.UserID = &userID
		}
	}
	if payload, err := json.Marshal(map[string]string{"upi_id": req.UpiID, "business_name": req.BusinessName}); err == nil {
		entry.Details = string(payload)
	}
	if err := s.auditRepo.Log(ctx, &entry); err != nil {
		log.Printf("audit: failed to record %s: %v", model.ActionUpdateSettings, err)
	}

	return s.GetUpiSettings(ctx), nil
}
