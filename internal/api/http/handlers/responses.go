package handlers

import (
	"github.com/spec-kit/marketplace-service/internal/api/dto"
	"github.com/spec-kit/marketplace-service/internal/domain"
)

func userResponse(user *domain.User) *dto.UserResponse {
	if user == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      string(user.Role),
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
	}
}

func profileResponse(profile *domain.ProviderProfile) *dto.ProfileResponse {
	if profile == nil {
		return nil
	}
	return &dto.ProfileResponse{
		ID:                 profile.ID,
		ServiceDescription: profile.ServiceDescription,
		ApprovalStatus:     string(profile.ApprovalStatus),
		ApprovedAt:         profile.ApprovedAt,
		CreatedAt:          profile.CreatedAt,
		User:               userResponse(profile.User),
	}
}

func serviceResponse(service *domain.Service) *dto.ServiceResponse {
	if service == nil {
		return nil
	}
	return &dto.ServiceResponse{
		ID:          service.ID,
		ProviderID:  service.ProviderID,
		Name:        service.Name,
		Description: service.Description,
		Location:    service.Location,
		Cost:        service.Cost,
		IsActive:    service.IsActive,
		CreatedAt:   service.CreatedAt,
		UpdatedAt:   service.UpdatedAt,
		Provider:    userResponse(service.Provider),
	}
}

func requestResponse(request *domain.ServiceRequest) *dto.RequestResponse {
	if request == nil {
		return nil
	}
	return &dto.RequestResponse{
		ID:        request.ID,
		Status:    string(request.Status),
		Message:   request.Message,
		CreatedAt: request.CreatedAt,
		UpdatedAt: request.UpdatedAt,
		Service:   serviceResponse(request.Service),
		Requester: userResponse(request.Requester),
		Provider:  userResponse(request.Provider),
	}
}
