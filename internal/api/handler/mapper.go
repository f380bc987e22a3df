package handler

import (
	"github.com/tiu-access/visit-access/internal/core/domain"
	"github.com/tiu-access/visit-access/internal/core/ports"
)

// --- Request → Service input ---

func toCreateRequestInput(req createRequestRequest) ports.CreateRequestInput {
	guests := make([]ports.GuestInput, 0, len(req.Guests))
	for _, g := range req.Guests {
		guests = append(guests, ports.GuestInput{
			FullName:    g.FullName,
			Email:       g.Email,
			PhoneNumber: g.PhoneNumber,
			IsForeign:   g.IsForeign,
		})
	}
	return ports.CreateRequestInput{
		Purpose: req.Purpose,
		Place:   req.Place,
		VisitAt: req.VisitAt,
		Guests:  guests,
	}
}

// toRoleIDs resolves role names. Names are validated by the DTO so an
// unknown one is reported rather than dropped.
func toRoleIDs(names []string) ([]domain.RoleID, error) {
	ids := make([]domain.RoleID, 0, len(names))
	for _, name := range names {
		id, ok := domain.ParseRole(name)
		if !ok {
			return nil, domain.Validationf("unknown role %q", name)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// --- Domain → Response ---

func toUserResponse(u *domain.User) userResponse {
	roles := u.Roles.Names()
	return userResponse{
		ID:        u.ID,
		FullName:  u.FullName,
		Email:     u.Email,
		Activated: u.Activated(),
		Roles:     roles,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toRequestResponse(r *domain.VisitRequest) requestResponse {
	guests := make([]guestResponse, 0, len(r.Guests))
	for _, g := range r.Guests {
		guests = append(guests, guestResponse{
			ID:          g.ID,
			FullName:    g.FullName,
			Email:       g.Email,
			PhoneNumber: g.PhoneNumber,
			IsForeign:   g.IsForeign,
			VisitStatus: string(g.VisitStatus),
		})
	}

	resp := requestResponse{
		ID:           r.ID,
		Purpose:      r.Purpose,
		Place:        r.Place,
		VisitAt:      r.VisitAt,
		Comment:      r.Comment,
		Status:       string(r.Status),
		ConfirmingID: r.ConfirmingID,
		Guests:       guests,
		CreatedAt:    r.CreatedAt,
		ReviewedAt:   r.ReviewedAt,
		Links: requestLinks{
			Self:       "/requests/" + r.ID,
			Credential: r.CredentialLocation,
		},
	}
	if r.Appellant != nil {
		resp.Appellant = &appellantResponse{
			ID:       r.Appellant.ID,
			FullName: r.Appellant.FullName,
			Email:    r.Appellant.Email,
		}
	}
	return resp
}

func toCredentialResponse(c *ports.StoredCredential) credentialResponse {
	return credentialResponse{
		Handle:              c.Handle,
		Credential:          c.Credential,
		VerificationAddress: c.VerificationAddress,
		IssuedAt:            c.IssuedAt,
	}
}
