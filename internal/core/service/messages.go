package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/tiu-access/visit-access/internal/core/domain"
)

const (
	systemName  = "Third Party TIU Eligibility System"
	visitLayout = "02.01.2006 15:04 MST"
)

func registrationNotice(address, link string) domain.Notification {
	return domain.Notification{
		Kind:    domain.NotifyRegistration,
		Address: address,
		Subject: "Complete your registration",
		Body: fmt.Sprintf("You have been registered in the %s, "+
			"please follow the link to complete your registration: %s", systemName, link),
	}
}

func recoveryNotice(address, link string) domain.Notification {
	return domain.Notification{
		Kind:    domain.NotifyPasswordRecovery,
		Address: address,
		Subject: "Password recovery",
		Body: fmt.Sprintf("A password reset was requested for your account in the %s. "+
			"Follow the link to set a new password: %s\n"+
			"If you did not request this, ignore this message.", systemName, link),
	}
}

// guestPass is sent to every guest of an approved request. location is
// empty when credential issuance failed.
func guestPass(r *domain.VisitRequest, g domain.Guest, location string) domain.Notification {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", g.FullName)
	fmt.Fprintf(&b, "You are invited to visit %s on %s.\n", r.Place, formatVisit(r.VisitAt))
	fmt.Fprintf(&b, "Purpose: %s\n", r.Purpose)
	if r.Appellant != nil {
		fmt.Fprintf(&b, "Invited by: %s\n", r.Appellant.FullName)
	}
	if location != "" {
		fmt.Fprintf(&b, "\nPresent this pass at the entrance: %s\n", location)
	} else {
		b.WriteString("\nYour pass will be available at the entrance.\n")
	}
	return domain.Notification{
		Kind:      domain.NotifyGuestPass,
		RequestID: r.ID,
		Address:   g.Email,
		Subject:   "Your visit pass",
		Body:      b.String(),
	}
}

func approvedNotice(r *domain.VisitRequest, address string) domain.Notification {
	body := fmt.Sprintf("Your visit request to %s on %s has been approved. "+
		"Passes were sent to %d guest(s).", r.Place, formatVisit(r.VisitAt), len(r.Guests))
	if r.Comment != "" {
		body += "\nReviewer comment: " + r.Comment
	}
	return domain.Notification{
		Kind:      domain.NotifyRequestApproved,
		RequestID: r.ID,
		Address:   address,
		Subject:   "Visit request approved",
		Body:      body,
	}
}

func rejectedNotice(r *domain.VisitRequest, address string) domain.Notification {
	body := fmt.Sprintf("Your visit request to %s on %s has been rejected.",
		r.Place, formatVisit(r.VisitAt))
	if r.Comment != "" {
		body += "\nReviewer comment: " + r.Comment
	}
	return domain.Notification{
		Kind:      domain.NotifyRequestRejected,
		RequestID: r.ID,
		Address:   address,
		Subject:   "Visit request rejected",
		Body:      body,
	}
}

func formatVisit(t time.Time) string {
	return t.UTC().Format(visitLayout)
}
