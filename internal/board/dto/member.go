package dto

type InviteRequest struct {
	Email  string   `json:"email"`
	Emails []string `json:"emails" binding:"omitempty,max=50"`
}

// All merges the single and bulk forms, dropping blanks
func (r *InviteRequest) All() []string {
	out := make([]string, 0, len(r.Emails)+1)
	if r.Email != "" {
		out = append(out, r.Email)
	}
	for _, e := range r.Emails {
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}

// Invite outcomes
const (
	InviteSent    = "sent"
	InviteMember  = "already_member"
	InviteBanned  = "banned"
	InviteInvalid = "invalid"
	InviteFailed  = "failed"
)

type InviteResult struct {
	Email  string `json:"email"`
	Status string `json:"status"`
}

type InviteResponse struct {
	Results []InviteResult `json:"results"`
}

type RoleRequest struct {
	Role string `json:"role" binding:"required"`
}
