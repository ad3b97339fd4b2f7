package permission

import "github.com/StoryBB/permissions/internal/db/models"

// Subject is the member a permission is checked for.
type Subject struct {
	// MemberID is zero for guests.
	MemberID         uint64           `json:"memberId"`
	PrimaryGroup     models.GroupID   `json:"primaryGroup"`
	AdditionalGroups []models.GroupID `json:"additionalGroups"`
}

// Guest is the subject of a visitor who is not logged in.
func Guest() Subject {
	return Subject{PrimaryGroup: models.GroupGuest}
}

// Operator is the subject of maintenance commands run on the server. It holds every permission.
func Operator() Subject {
	return Subject{PrimaryGroup: models.GroupAdministrator}
}

// SubjectFor builds the subject of a stored member.
func SubjectFor(m *models.Member) Subject {
	s := Subject{MemberID: m.ID, PrimaryGroup: m.PrimaryGroup}
	for _, ag := range m.AdditionalGroups {
		s.AdditionalGroups = append(s.AdditionalGroups, ag.GroupID)
	}

	return s
}

// Groups returns the primary group followed by the additional groups, without duplicates.
// Guests never carry additional groups.
func (s Subject) Groups() []models.GroupID {
	if s.PrimaryGroup == models.GroupGuest {
		return []models.GroupID{models.GroupGuest}
	}

	return uniqueGroups(append([]models.GroupID{s.PrimaryGroup}, s.AdditionalGroups...))
}

func uniqueGroups(groups []models.GroupID) []models.GroupID {
	out := make([]models.GroupID, 0, len(groups))
	seen := make(map[models.GroupID]bool, len(groups))

	for _, g := range groups {
		if seen[g] {
			continue
		}

		seen[g] = true
		out = append(out, g)
	}

	return out
}

func guestOnly(groups []models.GroupID) bool {
	return len(groups) == 1 && groups[0] == models.GroupGuest
}

func isAdmin(groups []models.GroupID) bool {
	for _, g := range groups {
		if g == models.GroupAdministrator {
			return true
		}
	}

	return false
}
